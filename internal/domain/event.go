package domain

import "time"

type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventConfirmed EventStatus = "confirmed"
	EventCancelled EventStatus = "cancelled"
)

func ParseEventStatus(s string) (EventStatus, bool) {
	switch EventStatus(s) {
	case EventPending, EventConfirmed, EventCancelled:
		return EventStatus(s), true
	default:
		return "", false
	}
}

type Event struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Date        string      `json:"date"`
	Time        string      `json:"time,omitempty"`
	Location    string      `json:"location,omitempty"`
	Description string      `json:"description"`
	Status      EventStatus `json:"status"`
	UserID      int64       `json:"user_id"`
	UserName    string      `json:"user_name,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type EventCreateReq struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type EventPatch struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}
