package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

func TestPassengerFare_FlightAgeMultipliers(t *testing.T) {
	// Base 500 with a +50 window-seat modifier.
	assert.Equal(t, 550.0, PassengerFare(models.ResourceTypeFlight, 500, 50, models.AgeCategoryAdult))
	assert.Equal(t, 412.5, PassengerFare(models.ResourceTypeFlight, 500, 50, models.AgeCategoryChild))
	assert.Equal(t, 55.0, PassengerFare(models.ResourceTypeFlight, 500, 50, models.AgeCategoryInfant))
}

func TestPassengerFare_BusAgeMultipliers(t *testing.T) {
	assert.Equal(t, 100.0, PassengerFare(models.ResourceTypeBus, 100, 0, models.AgeCategoryAdult))
	assert.Equal(t, 75.0, PassengerFare(models.ResourceTypeBus, 100, 0, models.AgeCategoryChild))
	assert.Equal(t, 10.0, PassengerFare(models.ResourceTypeBus, 100, 0, models.AgeCategoryInfant))
}

func TestPassengerFare_HotelIgnoresAgeCategory(t *testing.T) {
	// Stays charge the full unit price regardless of occupant age.
	for _, category := range []models.AgeCategory{
		models.AgeCategoryAdult, models.AgeCategoryChild, models.AgeCategoryInfant,
	} {
		assert.Equal(t, 220.0, PassengerFare(models.ResourceTypeHotel, 200, 20, category))
	}
}

func TestUnitPrice_AddsModifier(t *testing.T) {
	assert.Equal(t, 135.5, UnitPrice(120, 15.5))
	assert.Equal(t, 120.0, UnitPrice(120, 0))
}

func TestComputeBreakdown(t *testing.T) {
	breakdown := ComputeBreakdown(models.ResourceTypeBus, []float64{100, 75})

	assert.Equal(t, 175.0, breakdown.BaseAmount)
	assert.Equal(t, 8.75, breakdown.TaxAmount)
	assert.Equal(t, 30.0, breakdown.FeeAmount)
	assert.Equal(t, 213.75, breakdown.TotalAmount)
}

func TestComputeBreakdown_RoundsToCents(t *testing.T) {
	breakdown := ComputeBreakdown(models.ResourceTypeFlight, []float64{412.5, 412.5, 55})

	assert.Equal(t, 880.0, breakdown.BaseAmount)
	assert.Equal(t, 44.0, breakdown.TaxAmount)
	assert.Equal(t, 150.0, breakdown.FeeAmount)
	assert.Equal(t, 1074.0, breakdown.TotalAmount)
}
