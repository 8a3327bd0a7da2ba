package domain

import "time"

// History is an immutable score snapshot taken after a completed deal.
type History struct {
	SessionID string        `json:"session_id"`
	At        time.Time     `json:"at"`
	Scores    [NumSeats]int `json:"scores"`
}

// NewHistory captures the current scores of a session.
func NewHistory(s *Session, at time.Time) History {
	return History{
		SessionID: s.ID,
		At:        at,
		Scores:    s.Scores(),
	}
}
