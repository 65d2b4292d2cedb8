package model

import "time"

// EventType classifies an asset event.
type EventType string

// Event types.
const (
	EventCreated     EventType = "created"
	EventUpdated     EventType = "updated"
	EventMoved       EventType = "moved"
	EventAssigned    EventType = "assigned"
	EventReturned    EventType = "returned"
	EventMaintenance EventType = "maintenance"
	EventRetired     EventType = "retired"
	EventDeleted     EventType = "deleted"
	EventOther       EventType = "other"
)

// ManualEventTypes can be recorded directly by a user. The rest are
// written as side effects of create, update and delete.
var ManualEventTypes = []EventType{
	EventMoved, EventAssigned, EventReturned, EventMaintenance, EventRetired, EventOther,
}

// IsManual reports whether t may be recorded directly by a user.
func (t EventType) IsManual() bool {
	for _, v := range ManualEventTypes {
		if t == v {
			return true
		}
	}
	return false
}

// MovesAsset reports whether t changes where or with whom an asset is.
func (t EventType) MovesAsset() bool {
	return t == EventMoved || t == EventAssigned || t == EventReturned
}

// FieldChange is one before/after pair of an update event.
type FieldChange struct {
	FieldLabel string `json:"field_label"`
	Old        string `json:"old"`
	New        string `json:"new"`
}

// AssetEvent is an append-only audit record attached to one asset.
type AssetEvent struct {
	ID          int64         `json:"id" db:"id"`
	AssetID     int64         `json:"asset_id" db:"asset_id"`
	EventType   EventType     `json:"event_type" db:"event_type"`
	Description string        `json:"description" db:"description"`
	ChangesJSON *string       `json:"-" db:"changes_json"`
	Changes     []FieldChange `json:"changes,omitempty" db:"-"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	CreatedBy   *int64        `json:"created_by,omitempty" db:"created_by"`

	// Joined fields (not always populated).
	AssetName     string  `json:"asset_name,omitempty" db:"asset_name"`
	CreatedByName *string `json:"created_by_name,omitempty" db:"created_by_name"`
}
