package search

import "math"

const (
	// Unreached marks a node not yet assigned a distance.
	Unreached uint8 = math.MaxUint8
	// MaxDistance is the largest finite distance. A unit hop from a node at
	// MaxDistance is not taken.
	MaxDistance uint8 = Unreached - 1
)

// DistanceMap holds one distance per node, one byte each.
type DistanceMap []uint8

// NewDistanceMap returns a map of n nodes, all Unreached.
func NewDistanceMap(n uint32) DistanceMap {
	m := make(DistanceMap, n)
	for i := range m {
		m[i] = Unreached
	}
	return m
}

// Reached reports whether node i has a finite distance.
func (m DistanceMap) Reached(i uint32) bool { return m[i] != Unreached }
