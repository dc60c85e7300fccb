package favorites

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// List names, namespaced per device as "<device>:<list>".
const (
	favoritesList = "favorites"
	historyList   = "weatherHistory"
)

var ErrInvalidInput = errors.New("device id and city are required")

// Service implements favorites and visit history for a device on top of a
// KV. Read-modify-write cycles for one device are serialized.
type Service struct {
	kv KV

	// maxHistory caps the history list; <= 0 is unbounded.
	maxHistory int

	mu    sync.Mutex
	locks map[string]*deviceLock
}

type deviceLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a Service over kv.
func NewService(kv KV, maxHistory int) *Service {
	return &Service{
		kv:         kv,
		maxHistory: maxHistory,
		locks:      make(map[string]*deviceLock),
	}
}

func listKey(device, list string) string {
	return device + ":" + list
}

// lock serializes callers for one device and returns the release func.
func (s *Service) lock(device string) func() {
	s.mu.Lock()
	l, ok := s.locks[device]
	if !ok {
		l = &deviceLock{}
		s.locks[device] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, device)
		}
		s.mu.Unlock()
	}
}

func validate(device, city string) error {
	if strings.TrimSpace(device) == "" || strings.TrimSpace(city) == "" {
		return ErrInvalidInput
	}
	return nil
}

func indexOf(items []string, city string) int {
	for i, it := range items {
		if it == city {
			return i
		}
	}
	return -1
}

// ToggleFavorite flips membership of city and returns the new state.
func (s *Service) ToggleFavorite(ctx context.Context, device, city string) (bool, error) {
	if err := validate(device, city); err != nil {
		return false, err
	}
	defer s.lock(device)()

	key := listKey(device, favoritesList)
	items, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load favorites: %w", err)
	}

	var now bool
	if i := indexOf(items, city); i >= 0 {
		items = append(items[:i:i], items[i+1:]...)
	} else {
		items = append(items, city)
		now = true
	}

	if err := s.kv.Set(ctx, key, items); err != nil {
		return false, fmt.Errorf("save favorites: %w", err)
	}
	return now, nil
}

// IsFavorite reports whether city is in the device's favorites.
func (s *Service) IsFavorite(ctx context.Context, device, city string) (bool, error) {
	if err := validate(device, city); err != nil {
		return false, err
	}
	items, err := s.kv.Get(ctx, listKey(device, favoritesList))
	if err != nil {
		return false, fmt.Errorf("load favorites: %w", err)
	}
	return indexOf(items, city) >= 0, nil
}

// RecordVisit appends city to the history unless it is already anywhere in
// it. When the history is capped the oldest entries are dropped.
func (s *Service) RecordVisit(ctx context.Context, device, city string) error {
	if err := validate(device, city); err != nil {
		return err
	}
	defer s.lock(device)()

	key := listKey(device, historyList)
	items, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if indexOf(items, city) >= 0 {
		return nil
	}

	items = append(items, city)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(items) > s.maxHistory {
		over := len(items) - s.maxHistory
		items = items[over:]
	}

	if err := s.kv.Set(ctx, key, items); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// ListFavorites returns the device's favorites in insertion order.
func (s *Service) ListFavorites(ctx context.Context, device string) ([]string, error) {
	return s.list(ctx, device, favoritesList)
}

// ListHistory returns the device's visited cities, oldest first.
func (s *Service) ListHistory(ctx context.Context, device string) ([]string, error) {
	return s.list(ctx, device, historyList)
}

func (s *Service) list(ctx context.Context, device, list string) ([]string, error) {
	if strings.TrimSpace(device) == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.kv.Get(ctx, listKey(device, list))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", list, err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}
