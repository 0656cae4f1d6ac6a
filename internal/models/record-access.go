package models

import (
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// CollaboratorEntry is the persisted form of a collaborator grant. Both fields
// are stored as plain strings so that a removed level name degrades to "none"
// instead of breaking the document.
type CollaboratorEntry struct {
	Principal string `bson:"principal" json:"principal"`
	Level     string `bson:"level" json:"level"`
}

// RecordAccess is the per-record access document: one per patient record,
// holding the owner reference, the visibility name and the collaborator list.
type RecordAccess struct {
	ID            bson.ObjectID       `bson:"_id,omitempty" json:"-"`
	RecordID      string              `bson:"recordId" json:"recordId" validate:"required"`
	Owner         string              `bson:"owner" json:"owner"`
	Visibility    string              `bson:"visibility" json:"visibility"`
	Collaborators []CollaboratorEntry `bson:"collaborators" json:"collaborators"`
	CreatedAt     int                 `bson:"createdAt" json:"createdAt"`
	UpdatedAt     int                 `bson:"updatedAt" json:"updatedAt"`
}

// Group is a read-only view of a user group. Membership is maintained
// elsewhere; this service only resolves it.
type Group struct {
	ID      bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string        `bson:"name" json:"name" validate:"required"`
	Members []string      `bson:"members" json:"members"`
}

// SiteSettings is the site-wide access configuration document.
type SiteSettings struct {
	ID                   bson.ObjectID `bson:"_id,omitempty" json:"-"`
	DefaultVisibility    string        `bson:"defaultVisibility" json:"defaultVisibility"`
	DisabledVisibilities []string      `bson:"disabledVisibilities" json:"disabledVisibilities"`
	UpdatedAt            int           `bson:"updatedAt" json:"updatedAt"`
}

type AuditLog struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecordID  string         `bson:"recordId" json:"recordId"`
	Event     string         `bson:"event" json:"event"`
	Comment   string         `bson:"comment" json:"comment"`
	Details   map[string]any `bson:"details,omitempty" json:"details"`
	Timestamp int            `bson:"timestamp" json:"timestamp"`
}

type Claims struct {
	jwt.RegisteredClaims
	Id          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}
