package models

import "time"

type Post struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	ImageURL         *string   `json:"image_url,omitempty"`
	AuthorName       *string   `json:"author_name"`
	AuthorUsername   *string   `json:"author_username"`
	AuthorProfilePic *string   `json:"author_profile_pic"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Connection struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	TargetID    int64     `json:"target_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
