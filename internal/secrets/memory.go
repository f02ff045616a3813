package secrets

import (
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-memory Client fake, used by tests. A deployment with no
// secrets backend configured gets a nil Client instead, and the TLS-cleanup
// phase is only built when a non-nil Client is supplied — Memory exists so
// tests can exercise that phase without a Kubernetes API server.
type Memory struct {
	mu      sync.Mutex
	secrets map[string]map[string]struct{}
}

// NewMemory returns an empty in-memory secrets store, optionally seeded with
// namespace -> secret names.
func NewMemory(seed map[string][]string) *Memory {
	m := &Memory{secrets: make(map[string]map[string]struct{})}
	for ns, names := range seed {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		m.secrets[ns] = set
	}
	return m
}

// List returns the sorted names of every secret in namespace.
func (m *Memory) List(namespace string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.secrets[namespace]
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a secret by name, or errors if it does not exist.
func (m *Memory) Delete(namespace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.secrets[namespace]
	if set == nil {
		return fmt.Errorf("secrets: namespace %q not found", namespace)
	}
	if _, ok := set[name]; !ok {
		return fmt.Errorf("secrets: %q not found in namespace %q", name, namespace)
	}
	delete(set, name)
	return nil
}
