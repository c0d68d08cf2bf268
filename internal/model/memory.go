package model

import "time"

type Memory struct {
	ID             int64     `json:"id"`
	RelationshipID int64     `json:"relationship_id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	ImageURL       string    `json:"image_url"`
	Date           time.Time `json:"date"`
}

type NewMemory struct {
	Title       string
	Description *string
	ImageURL    string
	Date        time.Time
}
