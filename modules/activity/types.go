package activity

import (
	"context"
	"time"
)

// Entry is one recorded task lifecycle event.
type Entry struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	TaskID     uint64    `json:"task_id"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RecentRequest is the request for the most recent entries.
// A zero Limit returns the whole feed.
type RecentRequest struct {
	Limit int `json:"limit"`
}

// RecentResponse lists entries newest first.
type RecentResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// ActivityPort is the driving port for reading the activity feed.
type ActivityPort interface {
	Recent(ctx context.Context, limit int) (*RecentResponse, error)
}
