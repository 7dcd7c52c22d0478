package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	CategoryCreated Type = "category.created"
	CategoryUpdated Type = "category.updated"
	CategoryDeleted Type = "category.deleted"
	ProductCreated  Type = "product.created"
	ProductUpdated  Type = "product.updated"
	ProductDeleted  Type = "product.deleted"
)

// Event announces a successful write to one catalog document.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Collection string    `json:"collection"`
	DocumentID string    `json:"documentId"`
	At         time.Time `json:"at"`
}

func New(t Type, collection, documentID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Collection: collection,
		DocumentID: documentID,
		At:         time.Now().UTC(),
	}
}

func (e Event) Marshal() ([]byte, error) { return json.Marshal(e) }

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
