package physics

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/vovakirdan/merge-fruit/internal/core"
)

const snapshotVersion = 1

type snapshotBody struct {
	Spec            BodySpec  `json:"spec"`
	Velocity        core.Vec2 `json:"velocity"`
	AngularVelocity float64   `json:"angular_velocity"`
}

type snapshotDoc struct {
	Version int            `json:"version"`
	Bodies  []snapshotBody `json:"bodies"`
}

// Snapshot encodes every colliding dynamic body with its current position,
// angle and velocity. Static and non-colliding bodies are left out; the game
// rebuilds those itself.
func (s *Space) Snapshot() ([]byte, error) {
	doc := snapshotDoc{Version: snapshotVersion, Bodies: []snapshotBody{}}
	for _, h := range s.handles() {
		e := s.entries[h]
		if e.body == nil || e.spec.Static {
			continue
		}
		spec := e.spec
		spec.Position = fromCP(e.body.Position())
		spec.Angle = e.body.Angle()
		doc.Bodies = append(doc.Bodies, snapshotBody{
			Spec:            spec,
			Velocity:        fromCP(e.body.Velocity()),
			AngularVelocity: e.body.AngularVelocity(),
		})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("physics: cannot encode snapshot: %w", err)
	}
	return data, nil
}

// Restore decodes a snapshot and adds its bodies. The whole snapshot is
// validated before the first body is added.
func (s *Space) Restore(data []byte) ([]Restored, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadSnapshot, doc.Version)
	}
	for i, b := range doc.Bodies {
		if err := validateSnapshotBody(b); err != nil {
			return nil, fmt.Errorf("%w: body %d: %v", ErrBadSnapshot, i, err)
		}
	}

	restored := make([]Restored, 0, len(doc.Bodies))
	for _, b := range doc.Bodies {
		h := s.Add(b.Spec)
		if e := s.entries[h]; e.body != nil {
			e.body.SetVelocityVector(toCP(b.Velocity))
			e.body.SetAngularVelocity(b.AngularVelocity)
		}
		restored = append(restored, Restored{Handle: h, Spec: b.Spec})
	}
	return restored, nil
}

// validateSnapshotBody accepts only what Snapshot writes: finite, colliding
// dynamic bodies with a positive size.
func validateSnapshotBody(b snapshotBody) error {
	spec := b.Spec
	if spec.Static {
		return fmt.Errorf("static body")
	}
	if !spec.Collides {
		return fmt.Errorf("non-colliding body")
	}
	switch spec.Shape {
	case ShapeCircle:
		if !(spec.Radius > 0) {
			return fmt.Errorf("radius %v", spec.Radius)
		}
	case ShapeBox:
		if !(spec.Width > 0) || !(spec.Height > 0) {
			return fmt.Errorf("box %vx%v", spec.Width, spec.Height)
		}
	default:
		return fmt.Errorf("shape %d", spec.Shape)
	}
	for _, v := range []float64{
		spec.Position.X, spec.Position.Y, spec.Angle,
		b.Velocity.X, b.Velocity.Y, b.AngularVelocity,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite value")
		}
	}
	return nil
}
