// Package reconcile keeps one remote list on screen: the fresh fetch when
// it succeeds, otherwise the last snapshot or built-in sample data, with an
// explanatory banner when the user asked for the load.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/client"
	"github.com/dmitrijs2005/hhblog/internal/client/flash"
	"github.com/dmitrijs2005/hhblog/internal/logging"
)

// Source says where the items on display came from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceCache
	SourceSample
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceCache:
		return "cache"
	case SourceSample:
		return "sample"
	default:
		return "none"
	}
}

// EmptyPolicy decides what an empty but successful fetch does.
type EmptyPolicy int

const (
	// ReplaceOnEmpty shows the empty list and saves it.
	ReplaceOnEmpty EmptyPolicy = iota
	// KeepOnEmpty leaves the list on display and the snapshot untouched.
	KeepOnEmpty
	// ClearOnEmpty shows the empty list and deletes the snapshot.
	ClearOnEmpty
)

type Snapshot[T any] interface {
	Load(ctx context.Context) ([]T, bool, error)
	Save(ctx context.Context, items []T) error
	Clear(ctx context.Context) error
}

type Options[T any, K comparable] struct {
	// Name is the capitalised list name used in banners, e.g. "Articles".
	Name  string
	Fetch func(ctx context.Context) ([]T, error)
	Cache Snapshot[T]
	ID    func(T) K
	// Sample is shown when neither the fetch nor the snapshot has data.
	Sample      func() []T
	Timeout     time.Duration
	Banner      *flash.Flash
	BannerTTL   time.Duration
	EmptyPolicy EmptyPolicy
	// MergeSample adds sample items missing from the snapshot to the
	// fallback view.
	MergeSample bool
	Logger      logging.Logger
}

type List[T any, K comparable] struct {
	opts Options[T, K]

	mu      sync.Mutex
	items   []T
	source  Source
	sampled map[K]struct{} // ids on display that came from Sample
	lastErr error
	issued  uint64
	applied uint64
}

func New[T any, K comparable](opts Options[T, K]) *List[T, K] {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Sample == nil {
		opts.Sample = func() []T { return nil }
	}
	return &List[T, K]{opts: opts}
}

// Result describes the outcome of a Load.
type Result struct {
	Source Source
	Count  int
	Err    error
	// Stale is set when a newer load finished first and this result was
	// not applied.
	Stale bool
}

// Prime shows the snapshot, or the sample, without touching the network.
func (l *List[T, K]) Prime(ctx context.Context) Source {
	items, src, sampled := l.fallback(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.applied == 0 && l.source == SourceNone {
		l.items, l.source, l.sampled = items, src, sampled
	}
	return l.source
}

// Load fetches the list. On failure the snapshot or sample is shown and,
// if explicit, an error banner explains why.
func (l *List[T, K]) Load(ctx context.Context, explicit bool) Result {
	l.mu.Lock()
	l.issued++
	seq := l.issued
	l.mu.Unlock()

	fetchCtx := ctx
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	fresh, err := l.opts.Fetch(fetchCtx)
	if err != nil {
		return l.fail(ctx, seq, err, explicit)
	}

	fresh = Dedupe(fresh, l.opts.ID)

	if len(fresh) == 0 {
		switch l.opts.EmptyPolicy {
		case KeepOnEmpty:
			l.mu.Lock()
			defer l.mu.Unlock()
			if seq < l.applied {
				return Result{Source: l.source, Count: len(l.items), Stale: true}
			}
			l.applied = seq
			l.lastErr = nil
			if l.source == SourceNone {
				l.source = SourceRemote
			}
			return Result{Source: l.source, Count: len(l.items)}
		case ClearOnEmpty:
			if !l.apply(seq, nil, SourceRemote, nil, nil) {
				return Result{Stale: true}
			}
			if err := l.opts.Cache.Clear(ctx); err != nil {
				l.opts.Logger.Warn(ctx, "failed to clear snapshot", "list", l.opts.Name, "error", err)
			}
			return Result{Source: SourceRemote}
		}
	}

	if !l.apply(seq, fresh, SourceRemote, nil, nil) {
		return Result{Source: SourceRemote, Count: len(fresh), Stale: true}
	}
	if err := l.opts.Cache.Save(ctx, fresh); err != nil {
		l.opts.Logger.Warn(ctx, "failed to save snapshot", "list", l.opts.Name, "error", err)
	}
	l.opts.Logger.Debug(ctx, "list loaded", "list", l.opts.Name, "count", len(fresh))
	return Result{Source: SourceRemote, Count: len(fresh)}
}

func (l *List[T, K]) fail(ctx context.Context, seq uint64, err error, explicit bool) Result {
	l.opts.Logger.Warn(ctx, "fetch failed, showing local data", "list", l.opts.Name, "error", err)

	items, src, sampled := l.fallback(ctx)
	if !l.apply(seq, items, src, sampled, err) {
		return Result{Source: src, Count: len(items), Err: err, Stale: true}
	}

	if explicit && l.opts.Banner != nil {
		l.opts.Banner.Error(BannerText(l.opts.Name, err), l.opts.BannerTTL)
	}
	return Result{Source: src, Count: len(items), Err: err}
}

func (l *List[T, K]) apply(seq uint64, items []T, src Source, sampled map[K]struct{}, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq < l.applied {
		return false
	}
	l.applied = seq
	l.items = items
	l.source = src
	l.sampled = sampled
	l.lastErr = err
	return true
}

// fallback returns what to show when the network is not an option, along
// with the ids of the sample items in it. A stored snapshot is used even
// when it is empty.
func (l *List[T, K]) fallback(ctx context.Context) ([]T, Source, map[K]struct{}) {
	cached, ok, err := l.opts.Cache.Load(ctx)
	if err != nil {
		l.opts.Logger.Warn(ctx, "failed to read snapshot", "list", l.opts.Name, "error", err)
	}

	if ok {
		if !l.opts.MergeSample {
			return cached, SourceCache, nil
		}
		own := l.idSet(cached)
		var added []T
		for _, it := range l.opts.Sample() {
			if _, dup := own[l.opts.ID(it)]; !dup {
				added = append(added, it)
			}
		}
		return Merge(cached, added, l.opts.ID), SourceCache, l.idSet(added)
	}
	sample := l.opts.Sample()
	return sample, SourceSample, l.idSet(sample)
}

func (l *List[T, K]) idSet(items []T) map[K]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[K]struct{}, len(items))
	for _, it := range items {
		set[l.opts.ID(it)] = struct{}{}
	}
	return set
}

// Items returns a copy of the list on display.
func (l *List[T, K]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List[T, K]) Source() Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

// Err is the error of the last applied load, nil after a success.
func (l *List[T, K]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

func (l *List[T, K]) Find(id K) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if l.opts.ID(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns the items on display matching keep.
func (l *List[T, K]) Filter(keep func(T) bool) []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []T
	for _, it := range l.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Remove drops exactly the item with id and saves the snapshot. It reports
// whether the item was present.
func (l *List[T, K]) Remove(ctx context.Context, id K) bool {
	l.mu.Lock()
	found := false
	kept := make([]T, 0, len(l.items))
	for _, it := range l.items {
		if l.opts.ID(it) == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
	delete(l.sampled, id)
	owned, src := l.withoutSamples(kept), l.source
	l.mu.Unlock()

	l.save(ctx, owned, src)
	return found
}

// Upsert replaces the item with the same id, or appends it.
func (l *List[T, K]) Upsert(ctx context.Context, item T) {
	l.mu.Lock()
	id := l.opts.ID(item)
	replaced := false
	next := make([]T, len(l.items))
	copy(next, l.items)
	for i := range next {
		if l.opts.ID(next[i]) == id {
			next[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, item)
	}
	l.items = next
	delete(l.sampled, id)
	owned, src := l.withoutSamples(next), l.source
	l.mu.Unlock()

	l.save(ctx, owned, src)
}

// Append adds item at the end without saving; used for lists that are not
// cached, such as the comments of a post.
func (l *List[T, K]) Append(item T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items[:len(l.items):len(l.items)], item)
}

// withoutSamples drops the sample items from items. Callers hold l.mu.
func (l *List[T, K]) withoutSamples(items []T) []T {
	if len(l.sampled) == 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := l.sampled[l.opts.ID(it)]; !ok {
			out = append(out, it)
		}
	}
	return out
}

// save persists the real items. A list showing nothing but samples leaves
// the snapshot absent so the samples keep standing in for it.
func (l *List[T, K]) save(ctx context.Context, items []T, src Source) {
	if src == SourceSample && len(items) == 0 {
		return
	}
	if err := l.opts.Cache.Save(ctx, items); err != nil {
		l.opts.Logger.Warn(ctx, "failed to save snapshot", "list", l.opts.Name, "error", err)
	}
}

// Merge returns fresh followed by the stale items whose id is not in fresh.
// On duplicate ids the fresh item wins.
func Merge[T any, K comparable](fresh, stale []T, id func(T) K) []T {
	seen := make(map[K]struct{}, len(fresh))
	out := make([]T, 0, len(fresh)+len(stale))
	for _, it := range fresh {
		if _, ok := seen[id(it)]; ok {
			continue
		}
		seen[id(it)] = struct{}{}
		out = append(out, it)
	}
	for _, it := range stale {
		if _, ok := seen[id(it)]; ok {
			continue
		}
		seen[id(it)] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Dedupe keeps the first item of each id.
func Dedupe[T any, K comparable](items []T, id func(T) K) []T {
	return Merge(items, nil, id)
}

// BannerText explains a failed load to the user.
func BannerText(name string, err error) string {
	switch {
	case errors.Is(err, client.ErrNotFound):
		return fmt.Sprintf("%s endpoint not found. Showing local data.", name)
	case errors.Is(err, client.ErrServer):
		return "Server error. Showing local data."
	case errors.Is(err, client.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Request timeout. Showing local data."
	case errors.Is(err, client.ErrUnavailable):
		return "Network error. Showing local data."
	default:
		return fmt.Sprintf("Failed to load %s from API. Showing local data.", strings.ToLower(name))
	}
}
