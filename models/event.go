package models

import (
	"time"

	"goflare.io/catering/models/enum"
)

type Event struct {
	ID        string         `json:"id"`
	Type      enum.EventType `json:"type"`
	Order     *Order         `json:"order,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
