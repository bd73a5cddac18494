package autoreg

import (
	"reflect"
	"sync"
)

// instanceKey identifies a cached instance. Open generic registrations cache
// one instance per closed service type.
type instanceKey struct {
	descriptor  *Descriptor
	serviceType reflect.Type
}

// instanceCell holds one cached instance. Its mutex serializes creation so
// concurrent resolutions of the same key create the instance once.
type instanceCell struct {
	mu    sync.Mutex
	done  bool
	value any
}

// instanceCache provides thread-safe caching for service instances
type instanceCache struct {
	mu    sync.Mutex
	cells map[instanceKey]*instanceCell
}

// newInstanceCache creates a new instance cache
func newInstanceCache() *instanceCache {
	return &instanceCache{
		cells: make(map[instanceKey]*instanceCell),
	}
}

// getOrCreate returns the cached instance for key, calling create once.
// Failed creations are not cached.
func (c *instanceCache) getOrCreate(key instanceKey, create func() (any, error)) (any, error) {
	c.mu.Lock()
	cell, ok := c.cells[key]
	if !ok {
		cell = &instanceCell{}
		c.cells[key] = cell
	}
	c.mu.Unlock()

	cell.mu.Lock()
	defer cell.mu.Unlock()

	if cell.done {
		return cell.value, nil
	}

	value, err := create()
	if err != nil {
		return nil, err
	}

	cell.value = value
	cell.done = true
	return value, nil
}

// clear removes all instances from the cache
func (c *instanceCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cells = make(map[instanceKey]*instanceCell)
}

// len returns the number of created instances
func (c *instanceCache) len() int {
	c.mu.Lock()
	cells := make([]*instanceCell, 0, len(c.cells))
	for _, cell := range c.cells {
		cells = append(cells, cell)
	}
	c.mu.Unlock()

	n := 0
	for _, cell := range cells {
		cell.mu.Lock()
		if cell.done {
			n++
		}
		cell.mu.Unlock()
	}
	return n
}
