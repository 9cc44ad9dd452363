package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Coordinates is a WGS84 point where the event takes place.
type Coordinates struct {
	Latitude  float64 `bson:"lat" json:"lat" validate:"min=-90,max=90"`
	Longitude float64 `bson:"lng" json:"lng" validate:"min=-180,max=180"`
}

type Event struct {
	ID         uuid.UUID `bson:"id" json:"id"`
	AdminEmail string    `bson:"admin_email" json:"admin_email" validate:"required"`

	Title       string       `bson:"title" json:"title" validate:"required,max=200"`
	Description string       `bson:"description" json:"description,omitempty" validate:"max=5000"`
	Location    string       `bson:"location" json:"location,omitempty"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Date        time.Time    `bson:"date" json:"date"`

	Status           EventStatus `bson:"status" json:"status" validate:"required,oneof=draft active completed cancelled"`
	MaxParticipants  *int        `bson:"max_participants,omitempty" json:"max_participants,omitempty" validate:"omitempty,min=1"`
	ParticipantCount int         `bson:"participant_count" json:"participant_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasCapacityFor reports whether a roster of the given size can take one more member.
func (e *Event) HasCapacityFor(rosterSize int) bool {
	if e.MaxParticipants == nil {
		return true
	}
	return rosterSize < *e.MaxParticipants
}

func (e *Event) clone() *Event {
	cp := *e
	if e.Coordinates != nil {
		coords := *e.Coordinates
		cp.Coordinates = &coords
	}
	if e.MaxParticipants != nil {
		limit := *e.MaxParticipants
		cp.MaxParticipants = &limit
	}
	return &cp
}

// EventPatch is a sparse update: nil fields are left untouched.
type EventPatch struct {
	Title           *string      `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description     *string      `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location        *string      `json:"location,omitempty"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	Date            *time.Time   `json:"date,omitempty"`
	Status          *EventStatus `json:"status,omitempty" validate:"omitempty,oneof=draft active completed cancelled"`
	MaxParticipants *int         `json:"max_participants,omitempty" validate:"omitempty,min=1"`
}

func (p *EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil &&
		p.Coordinates == nil && p.Date == nil && p.Status == nil && p.MaxParticipants == nil
}

// Apply merges the present fields of p into e and stamps UpdatedAt.
func (p *EventPatch) Apply(e *Event, now time.Time) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Coordinates != nil {
		coords := *p.Coordinates
		e.Coordinates = &coords
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.MaxParticipants != nil {
		limit := *p.MaxParticipants
		e.MaxParticipants = &limit
	}
	e.UpdatedAt = now
}

// EventRepo owns event records and their participant rosters. DeleteEvent
// also removes every voucher that references the event.
type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	ListEventsByAdmin(ctx context.Context, adminEmail string) ([]*Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, patch *EventPatch, now time.Time) (*Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	AddParticipant(ctx context.Context, id uuid.UUID, identity string) (*Event, error)
	RemoveParticipant(ctx context.Context, id uuid.UUID, identity string) (*Event, error)
	IsParticipant(ctx context.Context, id uuid.UUID, identity string) (bool, error)
	ListParticipants(ctx context.Context, id uuid.UUID) ([]string, error)
	ListEventsForParticipant(ctx context.Context, identity string) ([]*Event, error)
}
