// Package physics defines the rigid-body world the game runs on and an
// implementation backed by the Chipmunk2D port github.com/jakecoffman/cp.
//
// The game only talks to World. Bodies are referred to by Handle; the world
// owns the bodies and the game keeps its own metadata keyed by handle.
package physics

import (
	"errors"

	"github.com/vovakirdan/merge-fruit/internal/core"
)

// Handle identifies a body inside a World. Zero is never a valid handle.
type Handle uint64

// ShapeKind selects the collision shape of a body.
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
)

// Material holds surface properties.
type Material struct {
	Friction    float64 `json:"friction"`
	Restitution float64 `json:"restitution"`
	Density     float64 `json:"density"`
}

// BodySpec describes a body to add to the world.
type BodySpec struct {
	Shape    ShapeKind `json:"shape"`
	Radius   float64   `json:"radius,omitempty"` // ShapeCircle
	Width    float64   `json:"width,omitempty"`  // ShapeBox
	Height   float64   `json:"height,omitempty"` // ShapeBox
	Position core.Vec2 `json:"position"`
	Angle    float64   `json:"angle,omitempty"`
	Static   bool      `json:"static,omitempty"`
	Material Material  `json:"material"`

	// Collides=false keeps the body out of collision detection entirely.
	// Such bodies are visual only and never appear in a Pair.
	Collides bool `json:"collides"`

	// Tag is an opaque value carried through snapshots.
	Tag int `json:"tag"`
}

// Pair names two bodies that started touching during a step.
type Pair struct {
	A, B Handle
}

// Body is a read-only view of a body for rendering.
type Body struct {
	Handle   Handle
	Spec     BodySpec
	Position core.Vec2
	Angle    float64
}

// Restored pairs a handle created by Restore with the spec it was built from.
type Restored struct {
	Handle Handle
	Spec   BodySpec
}

// ErrBadSnapshot is wrapped by Restore when the snapshot cannot be decoded.
var ErrBadSnapshot = errors.New("physics: bad snapshot")

// World is the rigid-body simulation the game drives.
//
// Collision-start pairs are collected while stepping and returned when the
// step completes, so callers may add and remove bodies while handling them.
type World interface {
	Add(spec BodySpec) Handle
	Remove(h Handle)
	Contains(h Handle) bool
	Position(h Handle) (core.Vec2, bool)
	SetPosition(h Handle, p core.Vec2)
	Bodies() []Body
	Len() int

	// Step advances the simulation by dt seconds and returns the pairs that
	// began touching during the step, in detection order.
	Step(dt float64) []Pair

	// Clear removes every body.
	Clear()

	// Snapshot encodes every colliding, non-static body.
	Snapshot() ([]byte, error)

	// Restore adds the bodies of a snapshot to the world. On error nothing is added.
	Restore(data []byte) ([]Restored, error)
}
