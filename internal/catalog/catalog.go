// Package catalog describes salon services and where they are resolved from.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("service not found")
	ErrInvalidService = errors.New("invalid service")
)

// ID identifies a service. The backend sends numbers, the local catalog uses slugs.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("service id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as JSON numbers and everything
// else, including "007" or "+7", as strings so the id survives a round trip.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int64(); ok {
		if s := strconv.FormatInt(n, 10); s == string(id) {
			return []byte(s), nil
		}
	}
	return json.Marshal(string(id))
}

// Int64 returns the numeric form of the id when it has one.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

func (id ID) String() string { return string(id) }

// Service is a bookable salon service.
type Service struct {
	ID          ID              `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Duration    int             `json:"duration"` // minutes
	Image       string          `json:"image,omitempty"`
}

// Validate checks that a resolved service can be put into a cart.
func (s Service) Validate() error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidService)
	case s.Name == "":
		return fmt.Errorf("%w: %s has no name", ErrInvalidService, s.ID)
	case s.Price.IsNegative():
		return fmt.Errorf("%w: %s has negative price", ErrInvalidService, s.ID)
	case s.Duration < 0:
		return fmt.Errorf("%w: %s has negative duration", ErrInvalidService, s.ID)
	}
	return nil
}

// Source lists and resolves services.
type Source interface {
	List(ctx context.Context) ([]Service, error)
	Get(ctx context.Context, id ID) (Service, error)
}

// Local is an in-memory catalog that can be swapped atomically on reload.
type Local struct {
	mu       sync.RWMutex
	services map[ID]Service
}

// NewLocal creates a catalog with the given services.
func NewLocal(services []Service) *Local {
	l := &Local{}
	l.Replace(services)
	return l
}

// Replace swaps the full service set.
func (l *Local) Replace(services []Service) {
	m := make(map[ID]Service, len(services))
	for _, s := range services {
		m[s.ID] = s
	}
	l.mu.Lock()
	l.services = m
	l.mu.Unlock()
}

// List returns services sorted by id.
func (l *Local) List(_ context.Context) ([]Service, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Service, 0, len(l.services))
	for _, s := range l.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get resolves a service by id.
func (l *Local) Get(_ context.Context, id ID) (Service, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.services[id]
	if !ok {
		return Service{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}
