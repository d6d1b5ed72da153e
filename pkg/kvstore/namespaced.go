package kvstore

import "context"

// Namespaced prefixes every key before delegating to the wrapped store.
type Namespaced struct {
	next   Store
	prefix string
}

// NewNamespaced returns a store that stores key as prefix+key in next.
func NewNamespaced(next Store, prefix string) *Namespaced {
	return &Namespaced{next: next, prefix: prefix}
}

func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return n.next.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return n.next.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return n.next.Delete(ctx, n.prefix+key)
}
