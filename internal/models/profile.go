package models

import "time"

type Profile struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Name            *string    `json:"name"`
	Username        *string    `json:"username"`
	ProfilePicURL   *string    `json:"profile_pic_url"`
	Gender          *string    `json:"gender"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	IsDoctor        bool       `json:"is_doctor"`
	ConsultationFee *int64     `json:"consultation_fee,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
