package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to SeatStatus
		ok       bool
	}{
		{StatusAvailable, StatusOccupied, true},
		{StatusAvailable, StatusBlocked, true},
		{StatusOccupied, StatusAvailable, true},
		{StatusOccupied, StatusCheckedIn, true},
		{StatusCheckedIn, StatusOccupied, true},
		{StatusBlocked, StatusAvailable, true},
		{StatusRestricted, StatusAvailable, true},

		// a checked-in seat cannot be released or blocked without undo
		{StatusCheckedIn, StatusAvailable, false},
		{StatusCheckedIn, StatusBlocked, false},
		// an occupied seat must be released before blocking
		{StatusOccupied, StatusBlocked, false},
		{StatusAvailable, StatusCheckedIn, false},
		{StatusBlocked, StatusOccupied, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestSeatStatusValid(t *testing.T) {
	for _, s := range []SeatStatus{StatusAvailable, StatusOccupied, StatusHeld, StatusCheckedIn, StatusBlocked, StatusRestricted} {
		assert.True(t, s.Valid())
	}
	assert.False(t, SeatStatus("boarded").Valid())
	assert.False(t, SeatStatus("").Valid())
}

func TestStatusGroups(t *testing.T) {
	assert.True(t, StatusOccupied.OccupiedLike())
	assert.True(t, StatusHeld.OccupiedLike())
	assert.False(t, StatusCheckedIn.OccupiedLike())
	assert.True(t, StatusBlocked.BlockedLike())
	assert.True(t, StatusRestricted.BlockedLike())
	assert.False(t, StatusAvailable.BlockedLike())
}

func TestBoardingGroup(t *testing.T) {
	assert.Equal(t, "1", CabinFirst.BoardingGroup())
	assert.Equal(t, "2", CabinBusiness.BoardingGroup())
	assert.Equal(t, "3", CabinPremiumEconomy.BoardingGroup())
	assert.Equal(t, "4", CabinEconomy.BoardingGroup())
	assert.Equal(t, "5", CabinClass("crew_rest").BoardingGroup())
}

func TestDisplayRank(t *testing.T) {
	assert.Less(t, CabinFirst.DisplayRank(), CabinBusiness.DisplayRank())
	assert.Less(t, CabinBusiness.DisplayRank(), CabinPremiumEconomy.DisplayRank())
	assert.Less(t, CabinPremiumEconomy.DisplayRank(), CabinEconomy.DisplayRank())
	assert.Greater(t, CabinClass("suite").DisplayRank(), CabinEconomy.DisplayRank())
}
