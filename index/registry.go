package index

import (
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/knngraph/distance"
)

// Factory creates an empty index for a space. It returns an
// *UnsupportedSpaceError when the method cannot serve the space.
type Factory func(space distance.Space) (Index, error)

var (
	factoryMu sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers a factory for a method name.
//
// Engines should typically call this from an init() function.
func Register(method string, f Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[method] = f
}

// New creates an index for method over space.
func New(method string, space distance.Space) (Index, error) {
	factoryMu.RLock()
	f, ok := factories[method]
	factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return f(space)
}

// Methods returns the registered method names in lexical order.
func Methods() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	out := make([]string, 0, len(factories))
	for m := range factories {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}
