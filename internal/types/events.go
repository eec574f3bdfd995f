package types

import "github.com/google/uuid"

// EventName identifies a domain mutation published by the excluded
// content/graph collaborators. The feed cache manager subscribes to these
// instead of hooking record saves directly.
type EventName string

const (
	EventProfileUpdated      EventName = "profile.updated"
	EventConnectionChanged   EventName = "connection.changed"
	EventInterestChanged     EventName = "interest.changed"
	EventPreferencesChanged  EventName = "preferences.changed"
	EventCreatorMetricUpdate EventName = "creator_metric.updated"
	EventContentUpdated      EventName = "content.updated"
	EventEngagementRecorded  EventName = "engagement.recorded"
	EventCommunityMembership EventName = "community.membership"
)

// DomainEvent is the wire payload of an invalidation event. Fields other
// than Name are optional depending on the event.
type DomainEvent struct {
	Name      EventName   `json:"name"`
	UserID    uuid.UUID   `json:"user_id,omitempty"`
	CreatorID uuid.UUID   `json:"creator_id,omitempty"`
	ContentID uuid.UUID   `json:"content_id,omitempty"`
	Kind      ContentKind `json:"kind,omitempty"`
}
