package reactivity

// Collection is a reactive map: Get and Has track the specific key, Len
// and Range track the iterate sentinel (whole-collection shape); Set,
// Delete, and Clear trigger the right dispatch rule from the Registry's
// ADD/DELETE/SET/CLEAR table (spec §4.1), including the map-key-iterate
// sentinel that only fires for Map-shaped targets.
type Collection[K comparable, V any] struct {
	data map[K]V
}

// NewCollection creates an empty reactive Collection.
func NewCollection[K comparable, V any]() *Collection[K, V] {
	return &Collection[K, V]{data: make(map[K]V)}
}

// IsReactiveMap marks this target as Map-shaped to the Registry's
// dispatch rules (the mapLike interface in registry.go).
func (c *Collection[K, V]) IsReactiveMap() bool { return true }

// Get returns the value for key and whether it was present, tracking
// only that specific key — a later Set(key, ...) wakes the caller, but
// Add/Delete of a different key does not. Use Has if presence itself
// (rather than the value) needs to stay current across key-set changes.
func (c *Collection[K, V]) Get(key K) (V, bool) {
	Track(c, TrackGet, key)
	v, ok := c.data[key]
	return v, ok
}

// Has reports whether key is present, tracking the key itself.
func (c *Collection[K, V]) Has(key K) bool {
	Track(c, TrackHas, key)
	_, ok := c.data[key]
	return ok
}

// Len returns the number of entries, tracking the iterate sentinel
// since any Add or Delete changes it.
func (c *Collection[K, V]) Len() int {
	Track(c, TrackIterate, IterateKey)
	return len(c.data)
}

// Range calls fn for every entry in an unspecified order, tracking the
// iterate sentinel.
func (c *Collection[K, V]) Range(fn func(K, V) bool) {
	Track(c, TrackIterate, IterateKey)
	for k, v := range c.data {
		if !fn(k, v) {
			return
		}
	}
}

// Set inserts or overwrites key's value. Triggers ADD (if key is new)
// or SET (if it already existed) against the Registry's dispatch rules.
func (c *Collection[K, V]) Set(key K, value V) error {
	old, existed := c.data[key]
	c.data[key] = value

	if existed {
		return Trigger(c, TriggerSet, key, value, old, nil)
	}
	return Trigger(c, TriggerAdd, key, value, nil, nil)
}

// Delete removes key, if present, and triggers DELETE.
func (c *Collection[K, V]) Delete(key K) error {
	old, existed := c.data[key]
	if !existed {
		return nil
	}
	delete(c.data, key)
	return Trigger(c, TriggerDelete, key, nil, old, nil)
}

// Clear removes every entry and triggers CLEAR, which wakes every Dep
// registered against this Collection regardless of key.
func (c *Collection[K, V]) Clear() error {
	if len(c.data) == 0 {
		return nil
	}
	old := c.data
	c.data = make(map[K]V)
	return Trigger(c, TriggerClear, nil, nil, old, nil)
}
