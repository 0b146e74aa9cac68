// Package solve2d is the per-step orchestration layer (original spec
// §4.G): it drives the joint framework (joint/) and the contact solver
// (contact/) through the shared initialize -> warm-start -> velocity
// iterate -> integrate (external) -> position iterate protocol, grouped
// into islands that can be solved in parallel by an external caller.
//
// Broad/narrow-phase collision detection, island partitioning itself, and
// body integration remain external collaborators per original spec §1;
// this package consumes their output (a body list, a joint list, a
// pre-built contact list per island) rather than producing it.
package solve2d

import (
	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/contact"
	"github.com/wrenfield/solve2d/joint"
	"github.com/wrenfield/solve2d/settings"
)

// Integrator advances one body's velocity/position for the step. Body
// integration is an external collaborator (original spec §1); the
// orchestrator only calls it at the point the protocol in §4.G requires —
// once per body, between the velocity and position solve phases.
type Integrator func(b body.Body, ts settings.TimeStep)

// Island is the handle-based grouping named in original spec §9 ("an
// island is a list of body handles plus joint indices"): indices into a
// World's Bodies/Joints slices, plus the contact list an external
// broad/narrow-phase collaborator built for this step. Multiple islands
// reference disjoint body/joint indices so World.Step can solve them on
// independent goroutines without aliasing state (original spec §5).
type Island struct {
	BodyIndices  []int
	JointIndices []int
	Contacts     []*contact.ContactConstraint
}

// resolvedIsland is the island with its indices already dereferenced
// against a World, ready to step. Kept unexported: callers only ever see
// the index-based Island.
type resolvedIsland struct {
	bodies   []body.Body
	joints   []joint.Joint
	contacts []*contact.ContactConstraint
}

// step runs one full island step: initialize, warm-start, velocityIterations
// velocity passes, then positionIterations position passes (stopping early
// once every joint and contact reports converged). Body integration happens
// between the two phases via integrate, called once per body per step,
// matching original spec §4.G's ordering. No goroutines are spawned inside
// step itself — one island's internal work is strictly sequential, per
// original spec §5's "no suspension points" requirement.
func (isl *resolvedIsland) step(ts settings.TimeStep, set settings.Settings, velocityIterations, positionIterations int, integrate Integrator) bool {
	for _, j := range isl.joints {
		if j.IsEnabled() {
			j.Initialize(ts, set)
		}
	}
	for _, c := range isl.contacts {
		c.Initialize(ts, set)
		c.WarmStart(ts, set)
	}

	for i := 0; i < velocityIterations; i++ {
		for _, j := range isl.joints {
			if j.IsEnabled() {
				j.SolveVelocity(ts, set)
			}
		}
		for _, c := range isl.contacts {
			c.SolveVelocity(ts, set)
		}
	}

	if integrate != nil {
		for _, b := range isl.bodies {
			integrate(b, ts)
		}
	}

	converged := positionIterations == 0
	for i := 0; i < positionIterations; i++ {
		converged = true
		for _, j := range isl.joints {
			if !j.IsEnabled() {
				continue
			}
			if !j.SolvePosition(ts, set) {
				converged = false
			}
		}
		for _, c := range isl.contacts {
			if !c.SolvePosition(ts, set) {
				converged = false
			}
		}
		if converged {
			break
		}
	}
	return converged
}
