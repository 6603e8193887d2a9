package handlers

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)
