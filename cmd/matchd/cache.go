package main

import (
	"sync"
	"time"

	"github.com/Comcast/matchbox/core"
)

type SpecCacheEntry struct {
	Spec    *core.UpdatableSpec
	Expires time.Time
}

func (e *SpecCacheEntry) Get() *core.UpdatableSpec {
	if !e.Expires.IsZero() && time.Now().After(e.Expires) {
		return nil
	}
	return e.Spec
}

// SpecCache holds compiled specs by name.
type SpecCache struct {
	sync.Mutex

	// TTL, if positive, is how long an entry lives.  Only expires
	// entries when they are fetched.
	TTL     time.Duration
	Entries map[string]*SpecCacheEntry
}

func NewSpecCache(ttl time.Duration, size int) *SpecCache {
	return &SpecCache{
		TTL:     ttl,
		Entries: make(map[string]*SpecCacheEntry, size),
	}
}

// Put caches the spec, which must be compiled.
//
// If there's already an entry for that name, its UpdatableSpec gets
// the new spec so that holders of that UpdatableSpec see the change.
func (c *SpecCache) Put(name string, spec *core.Spec) error {
	c.Lock()
	defer c.Unlock()

	var expires time.Time
	if 0 < c.TTL {
		expires = time.Now().Add(c.TTL)
	}

	if e, have := c.Entries[name]; have {
		if err := e.Spec.SetSpec(spec); err != nil {
			return err
		}
		e.Expires = expires
		return nil
	}

	u := core.NewUpdatableSpec(spec)
	c.Entries[name] = &SpecCacheEntry{
		Spec:    u,
		Expires: expires,
	}
	return nil
}

func (c *SpecCache) Rem(name string) {
	c.Lock()
	delete(c.Entries, name)
	c.Unlock()
}

// Get returns nil if there's no live entry.
func (c *SpecCache) Get(name string) *core.UpdatableSpec {
	c.Lock()
	defer c.Unlock()
	e, have := c.Entries[name]
	if !have {
		return nil
	}
	if u := e.Get(); u != nil {
		return u
	}
	delete(c.Entries, name)
	return nil
}
