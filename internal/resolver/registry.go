package resolver

import (
	"sort"
	"strings"
	"sync"
)

type Factory func(deps Deps) Source

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("resolver: empty name in Register")
	}
	if f == nil {
		panic("resolver: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("resolver: duplicate registration for " + n)
	}
	registry[n] = f
}

func FactoryByName(name string) (Factory, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[n]
	return f, ok
}

func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
