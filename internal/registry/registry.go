// Package registry provides a global registry for room factories.
// Rooms register themselves in init() functions, allowing the platform
// to discover and build rooms without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/latte-escape/internal/rooms"
)

// RoomInfo contains metadata about a registered room.
type RoomInfo struct {
	ID   string
	Name string
	Fog  bool
}

// Factory returns a fresh room definition on every call, so callers may
// keep and mutate what they get.
type Factory func() (*rooms.Definition, error)

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]RoomInfo)
	mu        sync.RWMutex
)

// Register adds a room factory to the registry.
// Typically called from an init() function.
// Panics if a room with the same ID is already registered or if the factory
// cannot produce a valid room.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: room %q already registered", id))
	}
	info, err := describe(id, f)
	if err != nil {
		panic(err.Error())
	}
	factories[id] = f
	infos[id] = info
}

// Replace registers f under id, shadowing any room already registered there.
// Used for room directories given on the command line.
func Replace(id string, f Factory) error {
	info, err := describe(id, f)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	factories[id] = f
	infos[id] = info
	return nil
}

// Static registers an already loaded definition. Each Create returns a copy.
func Static(def *rooms.Definition) Factory {
	return func() (*rooms.Definition, error) {
		return def.Clone(), nil
	}
}

func describe(id string, f Factory) (RoomInfo, error) {
	def, err := f()
	if err != nil {
		return RoomInfo{}, fmt.Errorf("registry: room %q: %w", id, err)
	}
	if def.ID != id {
		return RoomInfo{}, fmt.Errorf("registry: room registered as %q has id %q", id, def.ID)
	}
	return RoomInfo{ID: id, Name: def.Name, Fog: def.Fog != nil}, nil
}

// List returns information about all registered rooms, sorted by ID.
func List() []RoomInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]RoomInfo, 0, len(factories))
	for id := range factories {
		result = append(result, infos[id])
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create builds a new definition of a room by its ID.
// Returns an error wrapping rooms.ErrNotFound if the ID is not registered.
func Create(id string) (*rooms.Definition, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: %w: %q", rooms.ErrNotFound, id)
	}
	return f()
}

// Exists checks if a room with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
