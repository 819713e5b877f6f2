package model

import "time"

// LoginEvent is one row of the append-only login history. Name is optional;
// Timestamp is assigned by the store at write time.
type LoginEvent struct {
	Email     string
	Name      string
	Timestamp time.Time
}
