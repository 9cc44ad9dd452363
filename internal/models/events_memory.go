package models

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

func (m *MemoryRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	if _, exists := m.events[event.ID]; exists {
		return nil, ErrValidation
	}
	stored := event.clone()
	m.rosters[stored.ID] = map[string]struct{}{stored.AdminEmail: {}}
	stored.ParticipantCount = 1
	m.events[stored.ID] = stored
	return stored.clone(), nil
}

func (m *MemoryRepo) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	m.eventsMu.RLock()
	defer m.eventsMu.RUnlock()

	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return event.clone(), nil
}

func (m *MemoryRepo) ListEvents(ctx context.Context) ([]*Event, error) {
	return m.filterEvents(func(*Event) bool { return true }), nil
}

func (m *MemoryRepo) ListEventsByAdmin(ctx context.Context, adminEmail string) ([]*Event, error) {
	return m.filterEvents(func(e *Event) bool { return e.AdminEmail == adminEmail }), nil
}

func (m *MemoryRepo) ListEventsForParticipant(ctx context.Context, identity string) ([]*Event, error) {
	m.eventsMu.RLock()
	defer m.eventsMu.RUnlock()

	events := make([]*Event, 0)
	for id, roster := range m.rosters {
		if _, ok := roster[identity]; !ok {
			continue
		}
		if event, ok := m.events[id]; ok {
			events = append(events, event.clone())
		}
	}
	sortEvents(events)
	return events, nil
}

func (m *MemoryRepo) filterEvents(keep func(*Event) bool) []*Event {
	m.eventsMu.RLock()
	defer m.eventsMu.RUnlock()

	events := make([]*Event, 0, len(m.events))
	for _, event := range m.events {
		if keep(event) {
			events = append(events, event.clone())
		}
	}
	sortEvents(events)
	return events
}

func sortEvents(events []*Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
}

func (m *MemoryRepo) UpdateEvent(ctx context.Context, id uuid.UUID, patch *EventPatch, now time.Time) (*Event, error) {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(event, now)
	return event.clone(), nil
}

func (m *MemoryRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.events, id)
	delete(m.rosters, id)

	m.vouchersMu.Lock()
	defer m.vouchersMu.Unlock()
	for vid, voucher := range m.vouchers {
		if voucher.EventID == id {
			delete(m.codes, voucher.Code)
			delete(m.vouchers, vid)
		}
	}
	return nil
}

func (m *MemoryRepo) AddParticipant(ctx context.Context, id uuid.UUID, identity string) (*Event, error) {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	roster := m.rosters[id]
	roster[identity] = struct{}{}
	event.ParticipantCount = len(roster)
	return event.clone(), nil
}

func (m *MemoryRepo) RemoveParticipant(ctx context.Context, id uuid.UUID, identity string) (*Event, error) {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	roster := m.rosters[id]
	delete(roster, identity)
	event.ParticipantCount = len(roster)
	return event.clone(), nil
}

func (m *MemoryRepo) IsParticipant(ctx context.Context, id uuid.UUID, identity string) (bool, error) {
	m.eventsMu.RLock()
	defer m.eventsMu.RUnlock()

	roster, ok := m.rosters[id]
	if !ok {
		return false, ErrNotFound
	}
	_, member := roster[identity]
	return member, nil
}

func (m *MemoryRepo) ListParticipants(ctx context.Context, id uuid.UUID) ([]string, error) {
	m.eventsMu.RLock()
	defer m.eventsMu.RUnlock()

	roster, ok := m.rosters[id]
	if !ok {
		return nil, ErrNotFound
	}
	participants := make([]string, 0, len(roster))
	for identity := range roster {
		participants = append(participants, identity)
	}
	sort.Strings(participants)
	return participants, nil
}
