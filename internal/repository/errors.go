// Package repository contains the data access layer for the seat inventory
// subsystem. The sentinel errors below let handlers map failures onto the
// subsystem's error families without string matching: not-found errors are
// surfaced as 404, conflicts (a seat that was not in the expected status when
// a conditional update ran, or inventory that already exists) as 409.
package repository

import "errors"

// Not-found sentinels, one per entity the subsystem resolves.
var (
	ErrTemplateNotFound  = errors.New("seat map template not found")
	ErrFlightNotFound    = errors.New("flight not found")
	ErrSeatNotFound      = errors.New("seat not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrPassengerNotFound = errors.New("passenger not found")
)

// ErrGateNotAssigned is returned when a flight has no gate assignment yet.
// Boarding-pass generation treats this as non-fatal and degrades gracefully.
var ErrGateNotAssigned = errors.New("no gate assigned to flight")

// ErrInventoryExists is returned when inventory initialization is attempted
// for a flight that already has inventory rows. Re-initialization requires an
// explicit external teardown first.
var ErrInventoryExists = errors.New("seat inventory already initialized for flight")

// ErrStatusConflict is returned when a conditional status update matched no
// row: the seat was not in the status the operation required. Callers should
// re-read the seat to report the observed status and let the client decide
// whether to retry with fresh data.
var ErrStatusConflict = errors.New("seat not in expected status")
