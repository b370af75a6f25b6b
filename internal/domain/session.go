package domain

import "time"

// Session is the authenticated context of one account for one pass.
type Session struct {
	Token       string
	DisplayName string
	Address     string
	LoginTime   time.Time
}

const UnknownDisplayName = "Unknown"
