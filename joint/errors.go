package joint

import "errors"

// The joint catalog's error taxonomy (spec §7). All synchronous; no
// recovery happens inside the solver — a constructor or setter either
// succeeds or returns one of these, wrapped with context via fmt.Errorf's
// %w so callers can errors.Is against the sentinel.
var (
	// ErrArgumentNull is returned when a required input (body, anchor,
	// axis) is missing at construction or mutation.
	ErrArgumentNull = errors.New("joint: required argument is nil")

	// ErrSameBody is returned by pair joints that require two distinct
	// bodies when the same body is passed twice.
	ErrSameBody = errors.New("joint: body1 and body2 must be distinct")

	// ErrEmptyCollection is returned by the n-ary joint framework when
	// constructed with zero bodies.
	ErrEmptyCollection = errors.New("joint: body collection must not be empty")

	// ErrOutOfRange is returned when a numeric input is outside the
	// joint's legal range (inverted limits, negative frequency/stiffness,
	// damping ratio outside [0,1], zero gear ratio).
	ErrOutOfRange = errors.New("joint: value out of range")

	// ErrInvalidIndex is returned by body-index accessors given an
	// out-of-bounds index.
	ErrInvalidIndex = errors.New("joint: index out of bounds")

	// ErrInvalidState is returned for a configuration the joint cannot
	// hold: a rope joint built with no limit enabled, or a spring enabled
	// on a rope joint. Enabling a motor does not check the bodies' inverse
	// inertia and never returns it.
	ErrInvalidState = errors.New("joint: invalid configuration")
)
