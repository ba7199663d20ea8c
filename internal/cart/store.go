// Package cart holds the storefront shopping cart: an in-memory set of
// lines, one per catalog item, whose quantities never leave [1, stock].
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backoffice/internal/catalog"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/metrics"
)

// Line is one cart entry: an item snapshot and how many units of it.
type Line struct {
	Item     catalog.Item
	Quantity int
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Listener receives the recomputed summary after a state change.
type Listener func(Summary)

// Store is the cart state machine. Every mutation reads the current state
// under one lock, so interleaved callers cannot act on a stale quantity.
// Invalid transitions are no-ops and report false.
type Store struct {
	mu    sync.Mutex
	order []int64
	lines map[int64]Line

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int

	metrics *metrics.CartMetrics
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics counts mutations by operation and outcome.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore returns an empty cart.
func NewStore(opts ...Option) *Store {
	s := &Store{
		lines:     map[int64]Line{},
		listeners: map[int]Listener{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Add puts quantity units of item in the cart (at least one). An absent
// line is inserted only if the quantity fits the stock; a present line grows
// only if the new total fits. The item snapshot is refreshed on success.
func (s *Store) Add(item catalog.Item, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(enums.CartOpAdd, func() bool {
		if item.Stock <= 0 {
			return false
		}
		line, ok := s.lines[item.ID]
		if !ok {
			if quantity > item.Stock {
				return false
			}
			s.lines[item.ID] = Line{Item: item, Quantity: quantity}
			s.order = append(s.order, item.ID)
			return true
		}
		if line.Quantity+quantity > item.Stock {
			return false
		}
		s.lines[item.ID] = Line{Item: item, Quantity: line.Quantity + quantity}
		return true
	})
}

// Increment adds one unit when the line is below its stock.
func (s *Store) Increment(itemID int64) bool {
	return s.mutate(enums.CartOpIncrement, func() bool {
		line, ok := s.lines[itemID]
		if !ok || line.Quantity >= line.Item.Stock {
			return false
		}
		line.Quantity++
		s.lines[itemID] = line
		return true
	})
}

// Decrement removes one unit; the last unit removes the line.
func (s *Store) Decrement(itemID int64) bool {
	return s.mutate(enums.CartOpDecrement, func() bool {
		line, ok := s.lines[itemID]
		if !ok {
			return false
		}
		if line.Quantity < 2 {
			s.deleteLocked(itemID)
			return true
		}
		line.Quantity--
		s.lines[itemID] = line
		return true
	})
}

// Remove deletes the line whatever its quantity.
func (s *Store) Remove(itemID int64) bool {
	return s.mutate(enums.CartOpRemove, func() bool {
		if _, ok := s.lines[itemID]; !ok {
			return false
		}
		s.deleteLocked(itemID)
		return true
	})
}

// Clear empties the cart.
func (s *Store) Clear() bool {
	return s.mutate(enums.CartOpClear, func() bool {
		if len(s.lines) == 0 {
			return false
		}
		s.lines = map[int64]Line{}
		s.order = nil
		return true
	})
}

// Settle takes the submitted lines out of the cart in one mutation. Each
// line's quantity drops by the submitted units and lines that reach zero are
// removed; lines added or raised after the snapshot keep the difference.
func (s *Store) Settle(submitted []Line) bool {
	return s.mutate(enums.CartOpSettle, func() bool {
		changed := false
		for _, sent := range submitted {
			line, ok := s.lines[sent.Item.ID]
			if !ok || sent.Quantity <= 0 {
				continue
			}
			changed = true
			if line.Quantity <= sent.Quantity {
				s.deleteLocked(sent.Item.ID)
				continue
			}
			line.Quantity -= sent.Quantity
			s.lines[sent.Item.ID] = line
		}
		return changed
	})
}

// Sync refreshes line snapshots from a new catalog. Lines whose item is gone
// or out of stock are dropped and quantities above the new stock are lowered
// to it.
func (s *Store) Sync(items []catalog.Item) bool {
	fresh := make(map[int64]catalog.Item, len(items))
	for _, item := range items {
		fresh[item.ID] = item
	}
	return s.mutate(enums.CartOpSync, func() bool {
		changed := false
		for _, id := range append([]int64(nil), s.order...) {
			line := s.lines[id]
			item, ok := fresh[id]
			if !ok || item.Stock <= 0 {
				s.deleteLocked(id)
				changed = true
				continue
			}
			quantity := min(line.Quantity, item.Stock)
			if quantity != line.Quantity || !sameItem(line.Item, item) {
				s.lines[id] = Line{Item: item, Quantity: quantity}
				changed = true
			}
		}
		return changed
	})
}

// CanIncrement reports whether Increment would change the line.
func (s *Store) CanIncrement(itemID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.lines[itemID]
	return ok && line.Quantity < line.Item.Stock
}

// Quantity returns the units of itemID in the cart, zero when absent.
func (s *Store) Quantity(itemID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines[itemID].Quantity
}

// Lines returns the lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linesLocked()
}

// Len is the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Summary derives totals from the current lines.
func (s *Store) Summary() Summary {
	return Summarize(s.Lines())
}

// Subscribe registers fn for summaries after each state change and returns
// a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) mutate(op enums.CartOp, apply func() bool) bool {
	s.mu.Lock()
	changed := apply()
	var summary Summary
	if changed {
		summary = Summarize(s.linesLocked())
	}
	s.mu.Unlock()

	s.metrics.ObserveMutation(op, enums.OutcomeOf(changed))
	if changed {
		s.notify(summary)
	}
	return changed
}

func (s *Store) notify(summary Summary) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(summary)
	}
}

func (s *Store) deleteLocked(itemID int64) {
	delete(s.lines, itemID)
	for i, id := range s.order {
		if id == itemID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func sameItem(a, b catalog.Item) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.UnitPrice.Equal(b.UnitPrice) &&
		a.Stock == b.Stock &&
		a.Category == b.Category &&
		a.Image == b.Image &&
		a.Description == b.Description &&
		a.ExpirationDate == b.ExpirationDate
}

func (s *Store) linesLocked() []Line {
	out := make([]Line, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.lines[id])
	}
	return out
}
