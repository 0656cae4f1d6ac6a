package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// OwnerChanged is published after a successful ownership transfer
	OwnerChanged EventType = "record.owner.changed"
	// CollaboratorAdded is published after a single collaborator grant
	CollaboratorAdded EventType = "record.collaborator.added"
	// CollaboratorRemoved is published after a collaborator revocation
	CollaboratorRemoved EventType = "record.collaborator.removed"
	// CollaboratorsUpdated is published after a wholesale collaborator replace
	CollaboratorsUpdated EventType = "record.collaborators.updated"
	// VisibilityChanged is published after a visibility change
	VisibilityChanged EventType = "record.visibility.changed"
	// RecordCreated is consumed from the record-management service
	RecordCreated EventType = "record.created"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Version   string    `json:"version"`
}

func newBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        generateEventID(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
	}
}

type OwnerChangedEvent struct {
	BaseEvent
	RecordID      string `json:"record_id"`
	PreviousOwner string `json:"previous_owner"`
	NewOwner      string `json:"new_owner"`
	ChangedBy     string `json:"changed_by"`
}

func NewOwnerChangedEvent(recordID, previousOwner, newOwner, changedBy string) *OwnerChangedEvent {
	return &OwnerChangedEvent{
		BaseEvent:     newBaseEvent(OwnerChanged),
		RecordID:      recordID,
		PreviousOwner: previousOwner,
		NewOwner:      newOwner,
		ChangedBy:     changedBy,
	}
}

func (e *OwnerChangedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type CollaboratorEvent struct {
	BaseEvent
	RecordID  string `json:"record_id"`
	Principal string `json:"principal,omitempty"`
	Level     string `json:"level,omitempty"`
	ChangedBy string `json:"changed_by"`
}

func NewCollaboratorEvent(eventType EventType, recordID, principal, level, changedBy string) *CollaboratorEvent {
	return &CollaboratorEvent{
		BaseEvent: newBaseEvent(eventType),
		RecordID:  recordID,
		Principal: principal,
		Level:     level,
		ChangedBy: changedBy,
	}
}

func (e *CollaboratorEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type VisibilityChangedEvent struct {
	BaseEvent
	RecordID   string `json:"record_id"`
	Visibility string `json:"visibility"`
	ChangedBy  string `json:"changed_by"`
}

func NewVisibilityChangedEvent(recordID, visibility, changedBy string) *VisibilityChangedEvent {
	return &VisibilityChangedEvent{
		BaseEvent:  newBaseEvent(VisibilityChanged),
		RecordID:   recordID,
		Visibility: visibility,
		ChangedBy:  changedBy,
	}
}

// ToJSON serializes the event to JSON
func (e *VisibilityChangedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordCreatedEvent is the inbound shape emitted by the record-management
// service when a new patient record is created.
type RecordCreatedEvent struct {
	BaseEvent
	RecordID  string `json:"record_id"`
	CreatedBy string `json:"created_by"`
}

// generateEventID generates a unique ID for an event
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()[:6]
}
