package services

import (
	"time"

	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// Refund policies are per-resource-type staircases over the time remaining
// until departure (or check-in). Steps are ordered from most to least
// generous; the first step whose threshold is met wins, and anything past
// the last step refunds nothing.

// RefundStep grants Percent when cancellation happens at least Before ahead
// of departure.
type RefundStep struct {
	Before  time.Duration
	Percent int
}

// RefundPolicy is an ordered staircase of refund steps.
type RefundPolicy struct {
	Steps []RefundStep
}

// PercentFor returns the refund percentage for a cancellation happening at
// now against the given departure time. Boundary times fall into the less
// generous band: cancelling exactly 24h before departure does not earn the
// ">24h" step.
func (p RefundPolicy) PercentFor(departsAt, now time.Time) int {
	remaining := departsAt.Sub(now)
	for _, step := range p.Steps {
		if remaining > step.Before {
			return step.Percent
		}
	}
	return 0
}

var refundPolicies = map[models.ResourceType]RefundPolicy{
	models.ResourceTypeBus: {Steps: []RefundStep{
		{Before: 24 * time.Hour, Percent: 90},
		{Before: 12 * time.Hour, Percent: 50},
		{Before: 6 * time.Hour, Percent: 25},
	}},
	models.ResourceTypeFlight: {Steps: []RefundStep{
		{Before: 48 * time.Hour, Percent: 80},
		{Before: 24 * time.Hour, Percent: 50},
		{Before: 6 * time.Hour, Percent: 25},
	}},
	models.ResourceTypeHotel: {Steps: []RefundStep{
		{Before: 7 * 24 * time.Hour, Percent: 100},
		{Before: 3 * 24 * time.Hour, Percent: 75},
		{Before: 24 * time.Hour, Percent: 50},
	}},
	models.ResourceTypeRestaurant: {Steps: []RefundStep{
		{Before: 24 * time.Hour, Percent: 100},
		{Before: 6 * time.Hour, Percent: 50},
	}},
}

// PolicyFor returns the refund policy for a resource type. Unknown types get
// an empty policy, which refunds nothing.
func PolicyFor(resourceType models.ResourceType) RefundPolicy {
	return refundPolicies[resourceType]
}
