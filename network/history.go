package network

import (
	"iter"
	"slices"
	"sort"
)

// FrameData is one historical item tagged with the local time it was recorded
// at and the step length it was simulated with.
type FrameData[T any] struct {
	Time      float64
	DeltaTime float64
	Item      T
}

// FrameHistory stores time-stamped per-frame values (typically inputs) so
// they can be replayed when a new authoritative state arrives.
//
// Items are expected in non-decreasing time order. Nothing sorts them, so a
// caller adding out of order would replay out of order.
type FrameHistory[T any] struct {
	items []FrameData[T]
	limit int
}

// NewFrameHistory creates a history holding at most limit items. A limit of
// zero or less means unbounded.
func NewFrameHistory[T any](limit int) *FrameHistory[T] {
	return &FrameHistory[T]{limit: limit}
}

// Add records item at time. DeltaTime is left at zero, which replay treats as
// "use the fixed step".
func (h *FrameHistory[T]) Add(time float64, item T) {
	h.AddFrame(FrameData[T]{Time: time, Item: item})
}

// AddFrame records a fully populated frame.
func (h *FrameHistory[T]) AddFrame(frame FrameData[T]) {
	if h.limit > 0 && len(h.items) >= h.limit {
		// Drop the oldest, same as overwriting the oldest ring slot.
		n := copy(h.items, h.items[1:])
		h.items = h.items[:n]
	}
	h.items = append(h.items, frame)
}

// RemoveBefore drops every item with Time <= cutoff.
func (h *FrameHistory[T]) RemoveBefore(cutoff float64) {
	idx := sort.Search(len(h.items), func(i int) bool {
		return h.items[i].Time > cutoff
	})
	if idx == 0 {
		return
	}
	n := copy(h.items, h.items[idx:])
	clear(h.items[n:])
	h.items = h.items[:n]
}

// RemoveAfter drops every item with Time > cutoff, for callers that rebuild
// recorded state past a given time.
func (h *FrameHistory[T]) RemoveAfter(cutoff float64) {
	idx := sort.Search(len(h.items), func(i int) bool {
		return h.items[i].Time > cutoff
	})
	clear(h.items[idx:])
	h.items = h.items[:idx]
}

// GetHistory returns a copy of all items in time order.
func (h *FrameHistory[T]) GetHistory() []FrameData[T] {
	return slices.Clone(h.items)
}

// After yields the items recorded strictly after t, oldest first.
func (h *FrameHistory[T]) After(t float64) iter.Seq[FrameData[T]] {
	return func(yield func(FrameData[T]) bool) {
		start := sort.Search(len(h.items), func(i int) bool {
			return h.items[i].Time > t
		})
		for _, item := range h.items[start:] {
			if !yield(item) {
				return
			}
		}
	}
}

// Latest returns the newest item, if any.
func (h *FrameHistory[T]) Latest() (FrameData[T], bool) {
	if len(h.items) == 0 {
		return FrameData[T]{}, false
	}
	return h.items[len(h.items)-1], true
}

func (h *FrameHistory[T]) Len() int {
	return len(h.items)
}

// Clear empties the history, used when the owning connection is reset.
func (h *FrameHistory[T]) Clear() {
	clear(h.items)
	h.items = h.items[:0]
}
