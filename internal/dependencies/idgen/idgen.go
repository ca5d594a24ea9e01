// Package idgen supplies unique identifiers for connections, projectiles
// and match records.
package idgen

import "github.com/google/uuid"

// Generator produces identifiers that are unique for the process lifetime
type Generator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a fresh UUID string
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
