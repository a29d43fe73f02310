package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

func TestRefundPolicy_Bus(t *testing.T) {
	departure := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	policy := PolicyFor(models.ResourceTypeBus)

	tests := []struct {
		name        string
		cancelledAt time.Time
		want        int
	}{
		{"two days ahead", departure.Add(-48 * time.Hour), 90},
		{"just over 24h", departure.Add(-24*time.Hour - time.Minute), 90},
		{"exactly 24h falls to lower band", departure.Add(-24 * time.Hour), 50},
		{"18 hours ahead", departure.Add(-18 * time.Hour), 50},
		{"exactly 12h falls to lower band", departure.Add(-12 * time.Hour), 25},
		{"8 hours ahead", departure.Add(-8 * time.Hour), 25},
		{"exactly 6h gets nothing", departure.Add(-6 * time.Hour), 0},
		{"one hour ahead", departure.Add(-time.Hour), 0},
		{"after departure", departure.Add(time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.PercentFor(departure, tt.cancelledAt))
		})
	}
}

func TestRefundPolicy_Flight(t *testing.T) {
	departure := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	policy := PolicyFor(models.ResourceTypeFlight)

	tests := []struct {
		name        string
		cancelledAt time.Time
		want        int
	}{
		{"three days ahead", departure.Add(-72 * time.Hour), 80},
		{"exactly 48h falls to lower band", departure.Add(-48 * time.Hour), 50},
		{"36 hours ahead", departure.Add(-36 * time.Hour), 50},
		{"12 hours ahead", departure.Add(-12 * time.Hour), 25},
		{"exactly 6h gets nothing", departure.Add(-6 * time.Hour), 0},
		{"last minute", departure.Add(-10 * time.Minute), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.PercentFor(departure, tt.cancelledAt))
		})
	}
}

func TestRefundPolicy_Hotel(t *testing.T) {
	checkIn := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	policy := PolicyFor(models.ResourceTypeHotel)

	tests := []struct {
		name        string
		cancelledAt time.Time
		want        int
	}{
		{"two weeks ahead", checkIn.Add(-14 * 24 * time.Hour), 100},
		{"five days ahead", checkIn.Add(-5 * 24 * time.Hour), 75},
		{"two days ahead", checkIn.Add(-2 * 24 * time.Hour), 50},
		{"exactly one day falls through", checkIn.Add(-24 * time.Hour), 0},
		{"same day", checkIn.Add(-3 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.PercentFor(checkIn, tt.cancelledAt))
		})
	}
}

func TestRefundPolicy_UnknownTypeRefundsNothing(t *testing.T) {
	policy := PolicyFor(models.ResourceType("ferry"))
	departure := time.Now().Add(1000 * time.Hour)
	assert.Equal(t, 0, policy.PercentFor(departure, time.Now()))
}
