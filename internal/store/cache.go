package store

import "sync"

// Cache is the write-through mirror required by spec §5: every mutating
// operation writes the backing Store first, then the in-memory mirror, under
// the write lock; reads are served from the mirror under the read lock.
// Readers never block readers; writers exclude everything, including other
// readers, for the duration of the backing-store I/O.
type Cache struct {
	backing Store
	mu      sync.RWMutex
	mirror  map[string][]byte
}

// NewCache wraps backing with a write-through in-memory mirror, warming the
// mirror from the current contents of root and everything beneath it. This
// is what lets Get/GetChildren be lock-cheap on the hot offer-processing
// path while still surviving a restart via the backing store.
func NewCache(backing Store, root string) (*Cache, error) {
	c := &Cache{backing: backing, mirror: make(map[string][]byte)}
	if err := c.warm(root); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) warm(path string) error {
	if v, err := c.backing.Get(path); err == nil {
		c.mirror[path] = v
	} else if err != ErrNotFound {
		return err
	}
	children, err := c.backing.GetChildren(path)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := c.warm(path + "/" + child); err != nil {
			return err
		}
	}
	return nil
}

// Get reads from the mirror under the read lock.
func (c *Cache) Get(path string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.mirror[path]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// GetChildren computes immediate children from the mirror's key set under
// the read lock.
func (c *Cache) GetChildren(path string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prefix := path + "/"
	seen := make(map[string]struct{})
	var children []string
	for k := range c.mirror {
		if len(k) <= len(prefix) || k[:len(prefix)] != prefix {
			continue
		}
		rest := k[len(prefix):]
		child := rest
		for i, r := range rest {
			if r == '/' {
				child = rest[:i]
				break
			}
		}
		if _, ok := seen[child]; !ok {
			seen[child] = struct{}{}
			children = append(children, child)
		}
	}
	return children, nil
}

// Set writes the backing store, then the mirror, under the write lock.
func (c *Cache) Set(path string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.backing.Set(path, value); err != nil {
		return err
	}
	c.mirror[path] = value
	return nil
}

// SetMany writes the backing store, then the mirror, atomically under the
// write lock.
func (c *Cache) SetMany(values map[string][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.backing.SetMany(values); err != nil {
		return err
	}
	for k, v := range values {
		c.mirror[k] = v
	}
	return nil
}

// DeleteAll removes path and everything beneath it from the backing store
// and the mirror, under the write lock.
func (c *Cache) DeleteAll(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.backing.DeleteAll(path); err != nil {
		return err
	}
	prefix := path + "/"
	for k := range c.mirror {
		if k == path || (len(k) > len(prefix) && k[:len(prefix)] == prefix) {
			delete(c.mirror, k)
		}
	}
	return nil
}

// ReadModifyWrite covers the "compound read-then-set-many" case spec §5
// calls out explicitly: it holds the write lock across a read of the current
// mirror values for paths and the resulting SetMany, so no offer cycle or
// status update can interleave with the recorder's tombstone rewrite.
func (c *Cache) ReadModifyWrite(
	paths []string, fn func(current map[string][]byte) (map[string][]byte, error),
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := make(map[string][]byte, len(paths))
	for _, p := range paths {
		if v, ok := c.mirror[p]; ok {
			current[p] = v
		}
	}
	writes, err := fn(current)
	if err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}
	if err := c.backing.SetMany(writes); err != nil {
		return err
	}
	for k, v := range writes {
		c.mirror[k] = v
	}
	return nil
}

// Close closes the backing store.
func (c *Cache) Close() error {
	return c.backing.Close()
}
