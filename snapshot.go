package tumble

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/segmentio/encoding/json"
)

// BodyState is a copy of the observable state of a body
type BodyState struct {
	Handle      Handle     `json:"handle"`
	Shape       string     `json:"shape"`
	Static      bool       `json:"static"`
	Position    mgl64.Vec3 `json:"position"`
	Velocity    mgl64.Vec3 `json:"velocity"`
	Settled     bool       `json:"settled"`
	InnerEnergy float64    `json:"inner_energy"`
}

// Snapshot copies the state of every live body, in insertion order
func (w *World) Snapshot() []BodyState {
	states := make([]BodyState, 0, w.Len())
	for handle, body := range w.Bodies() {
		states = append(states, BodyState{
			Handle:      handle,
			Shape:       body.Kind().String(),
			Static:      body.IsStatic(),
			Position:    body.Position(),
			Velocity:    body.Velocity,
			Settled:     body.IsSettled,
			InnerEnergy: body.InnerEnergy,
		})
	}

	return states
}

// MarshalSnapshot encodes states as JSON
func MarshalSnapshot(states []BodyState) ([]byte, error) {
	data, err := json.Marshal(states)
	if err != nil {
		return nil, errors.New("marshaling snapshot failed").
			WithTag("bodies", len(states)).
			Wrap(err)
	}

	return data, nil
}
