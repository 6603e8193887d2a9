package services

import "errors"

var (
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrProfessionalNotFound   = errors.New("professional not found")
	ErrNotConnected           = errors.New("users are not connected")
	ErrInsufficientCoins      = errors.New("insufficient coins")
	ErrSessionEnded           = errors.New("consultation session has ended")
	ErrCompanionUnavailable   = errors.New("companion service unavailable")
)
