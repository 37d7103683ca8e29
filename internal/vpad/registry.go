package vpad

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Factory opens a backend.
type Factory func(opts Options, logger *slog.Logger) (Backend, error)

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

// Register makes a backend available under name. Backends call it from
// init. Names are case-insensitive.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = f
}

// Names lists the registered backends in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Open opens the backend selected by opts.Backend. An unknown backend is
// reported as ErrUnavailable.
func Open(opts Options, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	name := strings.ToLower(opts.Backend)
	registryMu.RLock()
	f := registry[name]
	registryMu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: unknown backend %q (available: %s)", ErrUnavailable, opts.Backend, strings.Join(Names(), ", "))
	}
	return f(opts, logger.With("backend", name))
}
