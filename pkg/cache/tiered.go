package cache

import (
	"context"
	"errors"
	"time"
)

// Tiered reads through a fast front cache to a slower back cache. Writes
// go to both; back-cache hits are copied to the front with frontTTL.
type Tiered struct {
	front, back Cache
	frontTTL    time.Duration
}

// NewTiered layers front over back.
func NewTiered(front, back Cache, frontTTL time.Duration) *Tiered {
	return &Tiered{front: front, back: back, frontTTL: frontTTL}
}

// Get checks front, then back.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, err := t.front.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, ok, err := t.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = t.front.Set(ctx, key, data, t.frontTTL)
	return data, true, nil
}

// Set writes to both tiers.
func (t *Tiered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	frontTTL := t.frontTTL
	if ttl > 0 && (frontTTL <= 0 || ttl < frontTTL) {
		frontTTL = ttl
	}
	return errors.Join(
		t.front.Set(ctx, key, data, frontTTL),
		t.back.Set(ctx, key, data, ttl),
	)
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	return errors.Join(t.front.Delete(ctx, key), t.back.Delete(ctx, key))
}

// Close closes both tiers.
func (t *Tiered) Close() error {
	return errors.Join(t.front.Close(), t.back.Close())
}

// Clear empties every tier that is a [Clearer] and returns the number of
// entries removed from the back tier.
func (t *Tiered) Clear(ctx context.Context) (int, error) {
	var n int
	var errs []error
	if c, ok := t.front.(Clearer); ok {
		if _, err := c.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c, ok := t.back.(Clearer); ok {
		cleared, err := c.Clear(ctx)
		n = cleared
		if err != nil {
			errs = append(errs, err)
		}
	}
	return n, errors.Join(errs...)
}

var (
	_ Cache   = (*Tiered)(nil)
	_ Clearer = (*Tiered)(nil)
)
