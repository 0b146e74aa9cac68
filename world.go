package solve2d

import (
	"log"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/joint"
	"github.com/wrenfield/solve2d/settings"
)

// World owns the bodies and joints an engine has registered with the
// solver core, plus the tolerances they are solved under. It mirrors the
// teacher's World{Bodies, Gravity, Substeps, SpatialGrid, Workers, Events}
// shape, scoped to what this core actually owns: no spatial grid (broad
// phase is external, original spec §1), no gravity application (body
// integration is external too, supplied per step as an Integrator), and
// Substeps dropped since original spec §4.G's step protocol is already one
// full initialize/velocity/integrate/position cycle per call.
type World struct {
	Bodies []body.Body
	Joints []joint.Joint

	Settings settings.Settings
	// Workers is the goroutine fan-out width for SolveIslands; values < 1
	// are treated as DefaultWorkers.
	Workers int

	Events Events

	// Verbose enables a single log line per Step call reporting island
	// count and convergence, matching the "rare, once per step, optional"
	// logging placement original SPEC_FULL §2 calls for — the solver's
	// inner loops never log.
	Verbose bool

	previousDeltaTime float64
}

// NewWorld builds an empty World with engine-default settings.
func NewWorld() *World {
	return &World{
		Settings: settings.NewDefaultSettings(),
		Workers:  DefaultWorkers,
		Events:   NewEvents(),
	}
}

// AddBody registers a body and returns its index, for use in Island.BodyIndices.
func (w *World) AddBody(b body.Body) int {
	w.Bodies = append(w.Bodies, b)
	return len(w.Bodies) - 1
}

// AddJoint registers a joint and returns its index, for use in
// Island.JointIndices.
func (w *World) AddJoint(j joint.Joint) int {
	w.Joints = append(w.Joints, j)
	return len(w.Joints) - 1
}

// resolve dereferences an Island's indices against the World.
func (w *World) resolve(isl Island) resolvedIsland {
	r := resolvedIsland{
		bodies:   make([]body.Body, len(isl.BodyIndices)),
		joints:   make([]joint.Joint, len(isl.JointIndices)),
		contacts: isl.Contacts,
	}
	for i, idx := range isl.BodyIndices {
		r.bodies[i] = w.Bodies[idx]
	}
	for i, idx := range isl.JointIndices {
		r.joints[i] = w.Joints[idx]
	}
	return r
}

// Step advances every island one time step of deltaTime seconds, per
// original spec §4.G: initialize -> warm-start -> velocityIterations
// velocity passes -> integrate (external, via integrate) -> positionIterations
// position passes. Independent islands are solved across w.Workers
// goroutines (original spec §5: "multiple islands may be solved in
// parallel"); each island's own work stays strictly sequential. Returns,
// per island, whether its position solve converged within
// positionIterations. Also records this step's active contact pairs and
// flushes Enter/Stay/Exit events once all islands have stepped.
func (w *World) Step(deltaTime float64, velocityIterations, positionIterations int, islands []Island, integrate Integrator) []bool {
	ts := settings.NewTimeStep(deltaTime, w.previousDeltaTime)
	w.previousDeltaTime = deltaTime

	results := SolveIslands(w.Workers, w, islands, ts, velocityIterations, positionIterations, integrate)

	for _, isl := range islands {
		for _, c := range isl.Contacts {
			w.Events.RecordPair(c.Body1, c.Body2)
		}
	}
	w.Events.Flush()

	if w.Verbose {
		converged := true
		for _, ok := range results {
			converged = converged && ok
		}
		log.Printf("solve2d: step dt=%.6f islands=%d converged=%t", deltaTime, len(islands), converged)
	}

	return results
}
