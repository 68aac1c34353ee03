// Package id produces the opaque identifiers attached to entries and
// templates.
package id

import "github.com/google/uuid"

// Generator hands out unique opaque string ids.
type Generator interface {
	NewID() string
}

// UUIDGenerator is the production Generator, backed by random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// New returns the default Generator.
func New() Generator {
	return UUIDGenerator{}
}
