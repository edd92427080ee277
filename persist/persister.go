package persist

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/milk9111/mapbuilder/mapstate"
	"github.com/milk9111/mapbuilder/storage"
)

// StorageKey is the autosave slot name.
const StorageKey = "dnd-map-builder-state"

// Persister autosaves the store into a KV slot once edits go quiet.
type Persister struct {
	store    *mapstate.Store
	kv       storage.KV
	key      string
	debounce *Debouncer
	now      func() time.Time

	latest    mapstate.MapState
	restoring bool
	saves     int

	unsubscribe func()
}

type Option func(*Persister)

func WithKey(key string) Option {
	return func(p *Persister) {
		if key != "" {
			p.key = key
		}
	}
}

func WithDelay(d time.Duration) Option {
	return func(p *Persister) { p.debounce.SetDelay(d) }
}

// WithClock replaces time.Now for scheduling and lastSaved stamps.
func WithClock(now func() time.Time) Option {
	return func(p *Persister) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPersister(store *mapstate.Store, kv storage.KV, opts ...Option) *Persister {
	p := &Persister{
		store:    store,
		kv:       kv,
		key:      StorageKey,
		debounce: NewDebouncer(DefaultDelay),
		now:      time.Now,
		latest:   store.State(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.unsubscribe = store.Subscribe(p.onChange)
	return p
}

func (p *Persister) onChange(s mapstate.MapState) {
	p.latest = s
	if p.restoring {
		return
	}
	p.debounce.Touch(p.now())
}

// SetDelay changes the autosave quiet period.
func (p *Persister) SetDelay(d time.Duration) { p.debounce.SetDelay(d) }

// Pending reports whether an autosave is scheduled.
func (p *Persister) Pending() bool { return p.debounce.Pending() }

// Saves counts successful writes.
func (p *Persister) Saves() int { return p.saves }

// Restore loads the autosave slot into the store. Missing or malformed data
// leaves the store untouched; the latter is logged.
func (p *Persister) Restore() bool {
	b, ok, err := p.kv.Load(p.key)
	if err != nil {
		log.Printf("persist: restore %s: %v", p.key, err)
		return false
	}
	if !ok {
		return false
	}
	patch, _, err := Unmarshal(b)
	if err != nil {
		log.Printf("persist: restore %s: %v; starting fresh", p.key, err)
		return false
	}
	p.restoring = true
	p.store.LoadMapData(patch)
	p.restoring = false
	return true
}

// Tick writes the latest state if the debounce deadline has passed.
func (p *Persister) Tick(now time.Time) error {
	if !p.debounce.Due(now) {
		return nil
	}
	return p.save(now)
}

// Flush writes the latest state immediately and drops any pending autosave.
func (p *Persister) Flush() error {
	p.debounce.Cancel()
	return p.save(p.now())
}

func (p *Persister) save(now time.Time) error {
	b, err := Marshal(p.latest, now)
	if err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}
	if err := p.kv.Save(p.key, b); err != nil {
		return fmt.Errorf("persist: save %s: %w", p.key, err)
	}
	p.saves++
	return nil
}

// ClearSaved removes the autosave slot and drops any pending write so the
// slot stays empty until the next edit.
func (p *Persister) ClearSaved() error {
	p.debounce.Cancel()
	if err := p.kv.Clear(p.key); err != nil {
		return fmt.Errorf("persist: clear %s: %w", p.key, err)
	}
	return nil
}

// Close stops listening and drops any pending write without flushing.
func (p *Persister) Close() error {
	if p == nil {
		return nil
	}
	p.debounce.Cancel()
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	return nil
}

// IsMalformed reports whether err came from decoding bad snapshot data.
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformed) }
