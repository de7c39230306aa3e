// Package model defines the closed domain types shared by the repository and
// handler layers: seat statuses with their transition table, cabin classes and
// boarding groups. Keeping the transition rules here gives every mutation site
// a single place to ask whether a status change is legal; the repositories
// then enforce the same precondition atomically in SQL.
package model

// SeatStatus is the lifecycle state of one seat inventory item. The value
// stored in the database is the string form; only the constants below are
// valid.
type SeatStatus string

const (
	StatusAvailable  SeatStatus = "available"
	StatusOccupied   SeatStatus = "occupied"
	StatusHeld       SeatStatus = "held"
	StatusCheckedIn  SeatStatus = "checked_in"
	StatusBlocked    SeatStatus = "blocked"
	StatusRestricted SeatStatus = "restricted"
)

// transitions lists the legal moves of the per-seat state machine. A seat in
// checked_in cannot be released or blocked directly; check-in must be undone
// first, which is the checked_in -> occupied edge.
var transitions = map[SeatStatus][]SeatStatus{
	StatusAvailable:  {StatusOccupied, StatusHeld, StatusBlocked},
	StatusOccupied:   {StatusAvailable, StatusCheckedIn},
	StatusHeld:       {StatusAvailable, StatusOccupied, StatusCheckedIn},
	StatusCheckedIn:  {StatusOccupied},
	StatusBlocked:    {StatusAvailable},
	StatusRestricted: {StatusAvailable},
}

// Valid reports whether s is one of the known seat statuses.
func (s SeatStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is a legal edge of the
// seat state machine.
func (s SeatStatus) CanTransition(next SeatStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// OccupiedLike reports whether the seat counts as taken for availability
// summaries (occupied or held).
func (s SeatStatus) OccupiedLike() bool {
	return s == StatusOccupied || s == StatusHeld
}

// BlockedLike reports whether the seat is withheld from assignment
// (blocked or restricted).
func (s SeatStatus) BlockedLike() bool {
	return s == StatusBlocked || s == StatusRestricted
}
