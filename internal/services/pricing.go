package services

import (
	"math"

	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// Fare pricing. A unit's price is the schedule base fare plus the unit's own
// modifier (window seat, front row, deluxe room). Passenger-carrying
// resources then scale by age category; hotels and restaurants charge the
// full unit price per occupant.

const taxRate = 0.05

// serviceFees is the flat per-booking fee charged by resource type.
var serviceFees = map[models.ResourceType]float64{
	models.ResourceTypeBus:        30,
	models.ResourceTypeFlight:     150,
	models.ResourceTypeHotel:      100,
	models.ResourceTypeRestaurant: 20,
}

// ageMultipliers applies on bus and flight fares only.
var ageMultipliers = map[models.AgeCategory]float64{
	models.AgeCategoryAdult:  1.00,
	models.AgeCategoryChild:  0.75,
	models.AgeCategoryInfant: 0.10,
}

// UnitPrice returns the full price of one unit before age scaling.
func UnitPrice(baseFare, priceModifier float64) float64 {
	return roundMoney(baseFare + priceModifier)
}

// PassengerFare returns what one occupant pays for the given unit.
func PassengerFare(resourceType models.ResourceType, baseFare, priceModifier float64, category models.AgeCategory) float64 {
	price := baseFare + priceModifier
	switch resourceType {
	case models.ResourceTypeBus, models.ResourceTypeFlight:
		price *= ageMultipliers[category]
	}
	return roundMoney(price)
}

// ServiceFee returns the flat booking fee for a resource type.
func ServiceFee(resourceType models.ResourceType) float64 {
	return serviceFees[resourceType]
}

// PriceBreakdown totals a booking from its per-passenger fares.
type PriceBreakdown struct {
	BaseAmount  float64
	TaxAmount   float64
	FeeAmount   float64
	TotalAmount float64
}

// ComputeBreakdown sums passenger fares and applies tax and the service fee.
func ComputeBreakdown(resourceType models.ResourceType, passengerFares []float64) PriceBreakdown {
	var base float64
	for _, fare := range passengerFares {
		base += fare
	}
	base = roundMoney(base)
	tax := roundMoney(base * taxRate)
	fee := ServiceFee(resourceType)
	return PriceBreakdown{
		BaseAmount:  base,
		TaxAmount:   tax,
		FeeAmount:   fee,
		TotalAmount: roundMoney(base + tax + fee),
	}
}

// roundMoney rounds to two decimal places, half away from zero.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
