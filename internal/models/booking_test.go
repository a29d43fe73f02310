package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalizeBookingRequest_Validate(t *testing.T) {
	valid := FinalizeBookingRequest{
		ScheduleID: "sched-1",
		TravelDate: "2026-09-10",
		Passengers: []PassengerRequest{
			{UnitID: "u1", FullName: "Asha Perera", AgeCategory: AgeCategoryAdult},
			{UnitID: "u2", FullName: "Nilu Perera", AgeCategory: AgeCategoryChild},
		},
	}
	assert.NoError(t, valid.Validate())

	duplicate := valid
	duplicate.Passengers = []PassengerRequest{
		{UnitID: "u1", FullName: "Asha Perera", AgeCategory: AgeCategoryAdult},
		{UnitID: "u1", FullName: "Nilu Perera", AgeCategory: AgeCategoryAdult},
	}
	err := duplicate.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate unit")

	badCategory := valid
	badCategory.Passengers = []PassengerRequest{
		{UnitID: "u1", FullName: "Asha Perera", AgeCategory: "senior"},
	}
	assert.Error(t, badCategory.Validate())
}

func TestBookingCancellable(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusConfirmed}).Cancellable())
	assert.True(t, (&Booking{Status: BookingStatusPending}).Cancellable())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).Cancellable())
	assert.False(t, (&Booking{Status: BookingStatusCompleted}).Cancellable())
}

func TestAgeCategoryValid(t *testing.T) {
	assert.True(t, AgeCategoryAdult.Valid())
	assert.True(t, AgeCategoryInfant.Valid())
	assert.False(t, AgeCategory("senior").Valid())
}
