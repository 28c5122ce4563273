package postgres

import "github.com/oklog/ulid/v2"

// ULIDGenerator issues lexicographically sortable entry and event IDs.
type ULIDGenerator struct{}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a fresh ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
