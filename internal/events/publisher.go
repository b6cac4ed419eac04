package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel carries planner change events to the websocket hub.
const Channel = "planner:updates"

const (
	TypeSessionCreated  = "session.created"
	TypeSessionUpdated  = "session.updated"
	TypeSessionDeleted  = "session.deleted"
	TypeResourceCreated = "resource.created"
	TypeResourceUpdated = "resource.updated"
	TypeResourceDeleted = "resource.deleted"
	TypeReminderSent    = "reminder.sent"
)

type Event struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

// Publish fans a change event out to connected clients. Best effort: a
// failed publish is logged, never surfaced to the caller.
func (p *Publisher) Publish(ctx context.Context, eventType string, id uuid.UUID) {
	if p == nil || p.redis == nil {
		return
	}

	data, err := json.Marshal(Event{Type: eventType, ID: id})
	if err != nil {
		return
	}

	if err := p.redis.Publish(ctx, Channel, string(data)).Err(); err != nil {
		log.Printf("events: failed to publish %s: %v", eventType, err)
	}
}
