// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer that move them.
package queue

const (
	CheckInCompletedQueue   = "checkin.completed"
	CheckInUndoneQueue      = "checkin.undone"
	BoardingPassIssuedQueue = "boardingpass.issued"
)

// CheckInCompletedEvent is published after a passenger check-in commits.
// It carries enough context for downstream consumers (notifications,
// analytics, departure control displays) without querying the database.
type CheckInCompletedEvent struct {
	EventID          string `json:"event_id"`
	FlightID         uint64 `json:"flight_id"`
	FlightNumber     string `json:"flight_number"`
	BookingID        uint64 `json:"booking_id"`
	RecordLocator    string `json:"record_locator"`
	PassengerID      uint64 `json:"passenger_id"`
	PassengerName    string `json:"passenger_name"`
	SeatNumber       string `json:"seat_number"`
	CabinClass       string `json:"cabin_class"`
	BoardingGroup    string `json:"boarding_group"`
	BoardingSequence int    `json:"boarding_sequence"`
	FullyCheckedIn   bool   `json:"fully_checked_in"`
	CheckedInAt      string `json:"checked_in_at"`
}

// CheckInUndoneEvent is published when an agent reverts a check-in.
type CheckInUndoneEvent struct {
	EventID       string `json:"event_id"`
	FlightID      uint64 `json:"flight_id"`
	BookingID     uint64 `json:"booking_id"`
	PassengerID   uint64 `json:"passenger_id"`
	SeatNumber    string `json:"seat_number"`
	RecordLocator string `json:"record_locator"`
	UndoneAt      string `json:"undone_at"`
}

// BoardingPassIssuedEvent is published when a boarding pass is generated.
type BoardingPassIssuedEvent struct {
	EventID          string `json:"event_id"`
	FlightID         uint64 `json:"flight_id"`
	FlightNumber     string `json:"flight_number"`
	PassengerID      uint64 `json:"passenger_id"`
	PassengerName    string `json:"passenger_name"`
	SeatNumber       string `json:"seat_number"`
	BoardingSequence int    `json:"boarding_sequence"`
	Gate             string `json:"gate,omitempty"`
	IssuedAt         string `json:"issued_at"`
}
