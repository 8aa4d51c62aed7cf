package laguerre

import "sync"

type polyKey struct {
	k     int
	alpha float64
	x     float64
}

type ruleKey struct {
	k     int
	alpha float64
	eps   float64
}

type basisKey struct {
	tau float64
	b   float64
	j   int
}

// memo is a lock-guarded map from exact argument tuples to results.
type memo[K comparable, V any] struct {
	mu     sync.RWMutex
	values map[K]V
}

func newMemo[K comparable, V any]() *memo[K, V] {
	return &memo[K, V]{values: make(map[K]V)}
}

func (m *memo[K, V]) get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok
}

func (m *memo[K, V]) put(key K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = v
}

func (m *memo[K, V]) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.values)
}

func (m *memo[K, V]) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = make(map[K]V)
}

// Cache memoizes polynomial values, root sets, quadrature rules and basis
// function values. It only ever changes performance: every entry is the
// result of a deterministic computation and is stored once fully computed.
//
// A Cache is safe for concurrent use, so several evaluators may share one.
type Cache struct {
	poly  *memo[polyKey, float64]
	roots *memo[ruleKey, []float64]
	rules *memo[ruleKey, Rule]
	basis *memo[basisKey, float64]
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		poly:  newMemo[polyKey, float64](),
		roots: newMemo[ruleKey, []float64](),
		rules: newMemo[ruleKey, Rule](),
		basis: newMemo[basisKey, float64](),
	}
}

// CacheStats reports the number of entries held per table.
type CacheStats struct {
	Polynomials int `json:"polynomials"`
	RootSets    int `json:"rootSets"`
	Rules       int `json:"rules"`
	Basis       int `json:"basis"`
}

// Stats returns the current entry counts.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Polynomials: c.poly.len(),
		RootSets:    c.roots.len(),
		Rules:       c.rules.len(),
		Basis:       c.basis.len(),
	}
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.poly.reset()
	c.roots.reset()
	c.rules.reset()
	c.basis.reset()
}
