package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Desoltijfl/checador-demo/internal/model"
)

// EventStore is the append-only, in-memory check event log.
type EventStore struct {
	mu     sync.RWMutex
	events []model.CheckEvent
	nextID int64
	now    func() time.Time
	users  UserLookup
}

// UserLookup resolves user ids; UserStore satisfies it.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (model.User, bool)
}

type EventStoreOption func(*EventStore)

// WithEventClock overrides the clock that stamps new events.
func WithEventClock(now func() time.Time) EventStoreOption {
	return func(s *EventStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithUserLookup makes Record reject events for users the lookup does not know.
func WithUserLookup(users UserLookup) EventStoreOption {
	return func(s *EventStore) {
		s.users = users
	}
}

func NewEventStore(opts ...EventStoreOption) *EventStore {
	s := &EventStore{
		events: make([]model.CheckEvent, 0),
		nextID: 1,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends a check event stamped with the server clock at millisecond resolution. Callers are expected to
// resolve the device label with model.ResolveDevice; an empty one is stored as unknown.
func (s *EventStore) Record(ctx context.Context, userID int64, kind model.CheckKind, device string, location *string) (model.CheckEvent, error) {
	if !kind.Valid() {
		return model.CheckEvent{}, ErrInvalidKind
	}
	if userID <= 0 {
		return model.CheckEvent{}, ErrUnknownUser
	}
	if err := ctx.Err(); err != nil {
		return model.CheckEvent{}, err
	}
	if s.users != nil {
		if _, ok := s.users.FindByID(ctx, userID); !ok {
			return model.CheckEvent{}, ErrUnknownUser
		}
	}

	device = strings.TrimSpace(device)
	if device == "" {
		device = model.UnknownDevice
	}
	var loc *string
	if location != nil && *location != "" {
		value := *location
		loc = &value
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event := model.CheckEvent{
		ID:        s.nextID,
		UserID:    userID,
		Type:      kind,
		Timestamp: s.now().UTC().Truncate(time.Millisecond),
		Device:    device,
		Location:  loc,
	}
	s.nextID++
	s.events = append(s.events, event)
	return event, nil
}

// Query returns userID's events within [from, to] (nil bounds are open), newest first.
// Events sharing a timestamp are ordered by descending id.
func (s *EventStore) Query(_ context.Context, userID int64, from, to *time.Time) []model.CheckEvent {
	s.mu.RLock()
	result := make([]model.CheckEvent, 0)
	for _, event := range s.events {
		if event.UserID != userID {
			continue
		}
		if from != nil && event.Timestamp.Before(*from) {
			continue
		}
		if to != nil && event.Timestamp.After(*to) {
			continue
		}
		result = append(result, event)
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (s *EventStore) Count(_ context.Context, userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, event := range s.events {
		if event.UserID == userID {
			count++
		}
	}
	return count
}
