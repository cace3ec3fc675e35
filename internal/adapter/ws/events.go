package ws

// Event type constants for WebSocket messages emitted outside the store.
// Entity lifecycle events (conversation.*, project.*, reminder.*) originate
// in the memstore adapter; these cover the derived views.
const (
	EventGroupingUpdated = "grouping.updated"
	EventTitleUpdated    = "title.updated"
	EventReminderFired   = "reminder.fired"
)

// TitleUpdatedEvent is broadcast when the auto-title job renames a conversation.
type TitleUpdatedEvent struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
}

// GroupingUpdatedEvent is broadcast when the grouped conversation view changes.
type GroupingUpdatedEvent struct {
	Groups map[string][]string `json:"groups"`
}

// ReminderFiredEvent is broadcast when a pending reminder comes due.
type ReminderFiredEvent struct {
	ReminderID     string `json:"reminder_id"`
	ConversationID string `json:"conversation_id"`
	Note           string `json:"note"`
}
