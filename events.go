package solve2d

import (
	"reflect"

	"github.com/wrenfield/solve2d/body"
)

// EventType tags the kind of Event delivered to a listener.
type EventType uint8

const (
	ContactEnter EventType = iota
	ContactStay
	ContactExit
)

// Event is implemented by every event this package emits.
type Event interface {
	Type() EventType
}

// ContactEnterEvent fires the step a body pair first becomes an active
// contact.
type ContactEnterEvent struct {
	Body1, Body2 body.Body
}

func (e ContactEnterEvent) Type() EventType { return ContactEnter }

// ContactStayEvent fires every step after the first that a pair remains an
// active contact.
type ContactStayEvent struct {
	Body1, Body2 body.Body
}

func (e ContactStayEvent) Type() EventType { return ContactStay }

// ContactExitEvent fires the step a previously-active pair is no longer
// present in the contact list.
type ContactExitEvent struct {
	Body1, Body2 body.Body
}

func (e ContactExitEvent) Type() EventType { return ContactExit }

// Listener is a callback registered for one EventType.
type Listener func(event Event)

type pairKey struct {
	a, b body.Body
}

// bodyAddr extracts a stable ordering key for a pointer-backed body.Body so
// pair keys are built consistently regardless of construction order. Bodies
// not backed by a pointer (unusual, but the interface permits it) all sort
// to the same bucket and still key correctly via the interface's own
// equality — they just won't get a canonical a<b ordering across distinct
// instances of the same value type, which does not affect this package
// since it only ever compares pairs it itself constructed.
func bodyAddr(b body.Body) uintptr {
	v := reflect.ValueOf(b)
	if v.Kind() == reflect.Ptr {
		return v.Pointer()
	}
	return 0
}

func makePairKey(a, b body.Body) pairKey {
	if bodyAddr(b) < bodyAddr(a) {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Events adapts the teacher's trigger.go pair-tracking (enter/stay/exit via
// previous/current active-pair sets) from triggers to contacts. A contact
// whose SolvableContact.Solved is false because the ill-conditioned-K
// branch dropped it from this step's block solve is still recorded here —
// the decoupling fix from original spec §9's Open Question: solvability and
// event sequencing are independent.
type Events struct {
	listeners map[EventType][]Listener

	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

// NewEvents builds an empty Events tracker.
func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]Listener),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

// Subscribe registers listener for eventType.
func (e *Events) Subscribe(eventType EventType, listener Listener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// RecordPair marks (b1, b2) as active for the step in progress. Called once
// per contact constraint in the island's list, regardless of Solved.
func (e *Events) RecordPair(b1, b2 body.Body) {
	e.currentActivePairs[makePairKey(b1, b2)] = true
}

// Flush compares this step's active pairs against the prior step's, emits
// Enter/Stay/Exit events to subscribed listeners, and rolls the pair sets
// forward for the next step.
func (e *Events) Flush() {
	for pair := range e.currentActivePairs {
		var ev Event
		if e.previousActivePairs[pair] {
			ev = ContactStayEvent{Body1: pair.a, Body2: pair.b}
		} else {
			ev = ContactEnterEvent{Body1: pair.a, Body2: pair.b}
		}
		e.dispatch(ev)
	}
	for pair := range e.previousActivePairs {
		if !e.currentActivePairs[pair] {
			e.dispatch(ContactExitEvent{Body1: pair.a, Body2: pair.b})
		}
	}

	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func (e *Events) dispatch(ev Event) {
	for _, listener := range e.listeners[ev.Type()] {
		listener(ev)
	}
}
