package geo

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// BoundRTree indexes values by their bounding box.
type BoundRTree[V any] struct {
	mutex sync.RWMutex
	rtree rtree.RTreeG[V]
}

func (rt *BoundRTree[V]) Insert(bound orb.Bound, value V) {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	rt.rtree.Insert(bound.Min, bound.Max, value)
}

// InsertGeometry indexes value under the bound of geometry. Nil and empty
// geometries are skipped.
func (rt *BoundRTree[V]) InsertGeometry(geometry orb.Geometry, value V) bool {
	if geometry == nil {
		return false
	}
	// empty geometries report an inverted bound
	bound := geometry.Bound()
	if bound.Min[0] > bound.Max[0] || bound.Min[1] > bound.Max[1] {
		return false
	}
	rt.Insert(bound, value)
	return true
}

// Search returns every value whose bound intersects bound.
func (rt *BoundRTree[V]) Search(bound orb.Bound) []V {
	matches := make([]V, 0, 16)

	rt.mutex.RLock()
	defer rt.mutex.RUnlock()
	rt.rtree.Search(bound.Min, bound.Max, func(min, max [2]float64, value V) bool {
		matches = append(matches, value)
		return true
	})

	return matches
}

func (rt *BoundRTree[V]) Len() int {
	rt.mutex.RLock()
	defer rt.mutex.RUnlock()
	return rt.rtree.Len()
}

func NewBoundRTree[V any]() *BoundRTree[V] {
	return &BoundRTree[V]{}
}
