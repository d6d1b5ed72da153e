package totp

import (
	"container/list"
	"sync"
	"time"
)

// defaultKeyCacheSize comfortably covers the number of accounts a single
// authenticator holds.
const defaultKeyCacheSize = 64

// Generator produces codes for many accounts while keeping decoded keys in a
// small LRU, so a screen refreshing every second does not decode every secret
// on every tick. It is safe for concurrent use.
type Generator struct {
	now func() time.Time

	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	eviction *list.List
}

type keyEntry struct {
	secret string
	key    []byte
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithCacheSize sets the number of decoded keys kept in memory.
func WithCacheSize(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.capacity = n
		}
	}
}

// NewGenerator creates a Generator with an empty key cache.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		now:      time.Now,
		capacity: defaultKeyCacheSize,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Code returns the current code for the secret. Zero fields in params use
// the defaults, and a zero params.Time is replaced by the generator clock.
func (g *Generator) Code(secret string, params Params) (string, error) {
	if params.Time.IsZero() {
		params.Time = g.now()
	}
	params = params.GetDefaults()
	if err := params.Validate(); err != nil {
		return "", err
	}

	key, err := g.key(secret)
	if err != nil {
		return "", err
	}
	return generateWithKey(key, params)
}

// Remaining returns the seconds left in the current window for period.
func (g *Generator) Remaining(period int) int {
	return RemainingSeconds(period, g.now())
}

// Forget drops a decoded key, e.g. after the account was deleted.
func (g *Generator) Forget(secret string) {
	secret = NormalizeSecret(secret)

	g.mu.Lock()
	defer g.mu.Unlock()

	if elem, ok := g.items[secret]; ok {
		g.eviction.Remove(elem)
		delete(g.items, secret)
	}
}

func (g *Generator) key(secret string) ([]byte, error) {
	secret = NormalizeSecret(secret)

	g.mu.Lock()
	if elem, ok := g.items[secret]; ok {
		g.eviction.MoveToFront(elem)
		key := elem.Value.(*keyEntry).key
		g.mu.Unlock()
		return key, nil
	}
	g.mu.Unlock()

	key, err := DecodeSecret(secret)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if elem, ok := g.items[secret]; ok {
		g.eviction.MoveToFront(elem)
		return key, nil
	}
	g.items[secret] = g.eviction.PushFront(&keyEntry{secret: secret, key: key})
	if g.eviction.Len() > g.capacity {
		oldest := g.eviction.Back()
		g.eviction.Remove(oldest)
		delete(g.items, oldest.Value.(*keyEntry).secret)
	}
	return key, nil
}

// Len reports how many decoded keys are cached.
func (g *Generator) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.eviction.Len()
}
