// Package boardingpass builds the fixed-format barcode payload printed on a
// boarding pass. The payload is a plain fixed-width concatenation so kiosk
// scanners can slice it by offset without a delimiter grammar.
package boardingpass

import (
	"fmt"
	"time"
)

// Field widths of the barcode payload, in order of appearance.
const (
	nameWidth     = 20 // passenger name, space-padded right
	locatorWidth  = 7  // booking record locator
	originWidth   = 3  // IATA origin code
	destWidth     = 3  // IATA destination code
	flightWidth   = 7  // flight number
	dayWidth      = 3  // day of year, zero-padded
	seatWidth     = 4  // seat number, space-padded right
	sequenceWidth = 4  // boarding sequence, zero-padded
)

// PayloadLength is the total length of a well-formed barcode payload.
const PayloadLength = nameWidth + locatorWidth + originWidth + destWidth +
	flightWidth + dayWidth + seatWidth + sequenceWidth

// Barcode renders the boarding-pass barcode payload. Values longer than
// their field are truncated to the field width; shorter values are padded.
// The day-of-year field is computed from the departure date.
func Barcode(passengerName, recordLocator, origin, destination, flightNumber string, departure time.Time, seatNumber string, boardingSequence int) string {
	return pad(passengerName, nameWidth) +
		pad(recordLocator, locatorWidth) +
		pad(origin, originWidth) +
		pad(destination, destWidth) +
		pad(flightNumber, flightWidth) +
		fmt.Sprintf("%0*d", dayWidth, departure.YearDay()) +
		pad(seatNumber, seatWidth) +
		fmt.Sprintf("%0*d", sequenceWidth, boardingSequence)
}

// pad space-pads s on the right to width, truncating when s is longer.
func pad(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return fmt.Sprintf("%-*s", width, s)
}
