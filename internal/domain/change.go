package domain

import (
	"encoding/json"
	"time"
)

// ChangeAction is the kind of write a ChangeEvent records.
type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

// ChangeEvent is the audit record of a single entity write.
type ChangeEvent struct {
	ID              string          `json:"event_id"`
	Collection      string          `json:"collection"`
	Action          ChangeAction    `json:"action"`
	EntityID        string          `json:"entity_id"`
	OccurredAt      time.Time       `json:"occurred_at"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	PIIRedacted     bool            `json:"pii_redacted,omitempty"`
	StreamMessageID string          `json:"-"` // set when read back from the change stream
}

// ChangeNotice is the lightweight form of a ChangeEvent pushed to live
// dashboard subscribers.
type ChangeNotice struct {
	Collection string       `json:"collection"`
	Action     ChangeAction `json:"action"`
	EntityID   string       `json:"entityId"`
}

func (e ChangeEvent) Notice() ChangeNotice {
	return ChangeNotice{Collection: e.Collection, Action: e.Action, EntityID: e.EntityID}
}
