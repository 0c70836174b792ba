package tumble

import (
	"iter"

	"github.com/akmonengine/tumble/actor"
	"github.com/akmonengine/tumble/narrowphase"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
	ON_SETTLE
	ON_WAKE
)

type pairKey struct {
	bodyA Handle
	bodyB Handle
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB Handle) pairKey {
	if bodyB < bodyA {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Collision events. BodyA is always the smaller handle.
type CollisionEnterEvent struct {
	BodyA Handle
	BodyB Handle
	Kind  narrowphase.PairKind
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA Handle
	BodyB Handle
	Kind  narrowphase.PairKind
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA Handle
	BodyB Handle
	Kind  narrowphase.PairKind
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// Settle/Wake events
type SettleEvent struct {
	Body Handle
}

func (e SettleEvent) Type() EventType { return ON_SETTLE }

type WakeEvent struct {
	Body Handle
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

// Events collects what happened during a step and dispatches it to the listeners
// once the step is over.
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Contact tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]narrowphase.PairKind
	currentActivePairs  map[pairKey]narrowphase.PairKind

	settleStates map[Handle]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 64),
		previousActivePairs: make(map[pairKey]narrowphase.PairKind),
		currentActivePairs:  make(map[pairKey]narrowphase.PairKind),
		settleStates:        make(map[Handle]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollision is called for every contact found during the step
func (e *Events) recordCollision(bodyA, bodyB Handle, kind narrowphase.PairKind) {
	e.currentActivePairs[makePairKey(bodyA, bodyB)] = kind
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
func (e *Events) processCollisionEvents() {
	for pair, kind := range e.currentActivePairs {
		if _, ok := e.previousActivePairs[pair]; ok {
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB, Kind: kind})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB, Kind: kind})
		}
	}

	for pair, kind := range e.previousActivePairs {
		if _, ok := e.currentActivePairs[pair]; !ok {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB, Kind: kind})
		}
	}

	// Swap for next step and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func (e *Events) processSettleEvents(bodies iter.Seq2[Handle, *actor.RigidBody]) {
	for handle, body := range bodies {
		trackedState, exists := e.settleStates[handle]
		if !exists {
			e.settleStates[handle] = body.IsSettled
			if body.IsSettled {
				e.buffer = append(e.buffer, SettleEvent{Body: handle})
			}
			continue
		}

		if !trackedState && body.IsSettled {
			e.buffer = append(e.buffer, SettleEvent{Body: handle})
			e.settleStates[handle] = true
		} else if trackedState && !body.IsSettled {
			e.buffer = append(e.buffer, WakeEvent{Body: handle})
			e.settleStates[handle] = false
		}
	}
}

// forget drops everything tracked about an erased body
func (e *Events) forget(handle Handle) {
	delete(e.settleStates, handle)
	for pair := range e.previousActivePairs {
		if pair.bodyA == handle || pair.bodyB == handle {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.bodyA == handle || pair.bodyB == handle {
			delete(e.currentActivePairs, pair)
		}
	}
}

// reset drops all tracking, listeners are kept
func (e *Events) reset() {
	e.buffer = e.buffer[:0]
	clear(e.previousActivePairs)
	clear(e.currentActivePairs)
	clear(e.settleStates)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
