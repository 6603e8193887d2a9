package models

import "time"

type MoodEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Value     int       `json:"value"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BreathSession struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Pattern         string    `json:"pattern"`
	DurationSeconds int       `json:"duration_seconds"`
	Cycles          int       `json:"cycles"`
	CoinsAwarded    int64     `json:"coins_awarded"`
	CreatedAt       time.Time `json:"created_at"`
}

type CoinBalance struct {
	UserID    int64     `json:"user_id"`
	Coins     int64     `json:"coins"`
	UpdatedAt time.Time `json:"updated_at"`
}
