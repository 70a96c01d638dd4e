package models

import "time"

// Wish is a free-text greeting left by a guest
type Wish struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
