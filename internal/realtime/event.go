// Package realtime merges asynchronous change events into an in-memory
// snapshot of a user's budgeting state. The merge itself is a pure
// function; the AMQP bridge in this package only decodes wire messages
// into the closed Event union and hands them to a caller-supplied handler.
package realtime

import (
	"encoding/json"
	"fmt"

	"hearth/internal/models"
)

// Entity identifies which table a change event refers to.
type Entity string

// Op identifies the kind of row change.
type Op string

const (
	EntityTransaction Entity = "transaction"
	EntityCategory    Entity = "category"
	EntityPeriod      Entity = "period"

	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is a validated change notification. Exactly one payload field is
// set, matching Entity. Events are validated at the decode boundary so the
// merge logic never needs defensive type checks.
type Event struct {
	Entity Entity
	Op     Op

	Transaction *models.Transaction
	Category    *models.Category
	Period      *models.Period
}

// wireEvent is the JSON shape published to the change exchange.
type wireEvent struct {
	Entity  string          `json:"entity"`
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses and validates a wire message into an Event.
func Decode(body []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(body, &w); err != nil {
		return Event{}, fmt.Errorf("unmarshal event envelope: %w", err)
	}

	ev := Event{Entity: Entity(w.Entity), Op: Op(w.Op)}
	switch ev.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return Event{}, fmt.Errorf("unknown op %q", w.Op)
	}

	switch ev.Entity {
	case EntityTransaction:
		var tx models.Transaction
		if err := json.Unmarshal(w.Payload, &tx); err != nil {
			return Event{}, fmt.Errorf("unmarshal transaction payload: %w", err)
		}
		if tx.ID == "" {
			return Event{}, fmt.Errorf("transaction event without id")
		}
		ev.Transaction = &tx
	case EntityCategory:
		var cat models.Category
		if err := json.Unmarshal(w.Payload, &cat); err != nil {
			return Event{}, fmt.Errorf("unmarshal category payload: %w", err)
		}
		if cat.PeriodID == "" || cat.Name == "" {
			return Event{}, fmt.Errorf("category event without period and name")
		}
		ev.Category = &cat
	case EntityPeriod:
		var p models.Period
		if err := json.Unmarshal(w.Payload, &p); err != nil {
			return Event{}, fmt.Errorf("unmarshal period payload: %w", err)
		}
		if p.ID == "" {
			return Event{}, fmt.Errorf("period event without id")
		}
		ev.Period = &p
	default:
		return Event{}, fmt.Errorf("unknown entity %q", w.Entity)
	}

	return ev, nil
}

// Encode serializes an Event into its wire shape.
func Encode(ev Event) ([]byte, error) {
	var payload any
	switch ev.Entity {
	case EntityTransaction:
		payload = ev.Transaction
	case EntityCategory:
		payload = ev.Category
	case EntityPeriod:
		payload = ev.Period
	default:
		return nil, fmt.Errorf("unknown entity %q", ev.Entity)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(wireEvent{Entity: string(ev.Entity), Op: string(ev.Op), Payload: raw})
}

// RoutingKey returns the key an event is published under, e.g.
// "transaction.insert".
func (e Event) RoutingKey() string {
	return string(e.Entity) + "." + string(e.Op)
}
