package models

import (
	"time"
)

// ResourceType identifies what kind of travel product a schedule sells.
// Matches PostgreSQL ENUM: resource_type
type ResourceType string

const (
	ResourceTypeBus        ResourceType = "bus"
	ResourceTypeFlight     ResourceType = "flight"
	ResourceTypeHotel      ResourceType = "hotel"
	ResourceTypeRestaurant ResourceType = "restaurant"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceTypeBus, ResourceTypeFlight, ResourceTypeHotel, ResourceTypeRestaurant:
		return true
	}
	return false
}

// ScheduleStatus represents the lifecycle of a schedule.
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
	ScheduleStatusDeparted  ScheduleStatus = "departed"
)

// Schedule is one bookable departure (bus trip, flight) or stay context
// (hotel date, restaurant slot). BaseFare is the per-unit price before the
// unit's own modifier is applied.
type Schedule struct {
	ID             string         `json:"id" db:"id"`
	ResourceType   ResourceType   `json:"resource_type" db:"resource_type"`
	OperatorName   string         `json:"operator_name" db:"operator_name"`
	RouteCode      string         `json:"route_code" db:"route_code"`
	Origin         string         `json:"origin" db:"origin"`
	Destination    string         `json:"destination" db:"destination"`
	DepartsAt      time.Time      `json:"departs_at" db:"departs_at"`
	ArrivesAt      *time.Time     `json:"arrives_at,omitempty" db:"arrives_at"`
	BaseFare       float64        `json:"base_fare" db:"base_fare"`
	Currency       string         `json:"currency" db:"currency"`
	TotalUnits     int            `json:"total_units" db:"total_units"`
	AvailableUnits int            `json:"available_units" db:"available_units"`
	Status         ScheduleStatus `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// Departed reports whether the schedule's departure (or check-in) time has
// passed.
func (s *Schedule) Departed(now time.Time) bool {
	return s.DepartsAt.Before(now)
}

// BookableUnit is one sellable seat or room instance owned by a schedule.
// Immutable once created; PriceModifier is added to the schedule base fare
// when pricing a booking.
type BookableUnit struct {
	ID            string    `json:"id" db:"id"`
	ScheduleID    string    `json:"schedule_id" db:"schedule_id"`
	Label         string    `json:"label" db:"label"`
	RowNumber     int       `json:"row_number" db:"row_number"`
	Position      int       `json:"position" db:"position"`
	UnitClass     string    `json:"unit_class" db:"unit_class"` // economy, business, window, deluxe...
	PriceModifier float64   `json:"price_modifier" db:"price_modifier"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// UnitWithAvailability is the seat-map row returned to clients: the unit
// plus its effective status for the queried date.
type UnitWithAvailability struct {
	BookableUnit
	Status AvailabilityStatus `json:"status" db:"status"`
}

// UnitLayoutRequest describes one unit when an admin creates a schedule.
type UnitLayoutRequest struct {
	Label         string  `json:"label" binding:"required"`
	RowNumber     int     `json:"row_number"`
	Position      int     `json:"position"`
	UnitClass     string  `json:"unit_class"`
	PriceModifier float64 `json:"price_modifier"`
}

// CreateScheduleRequest creates a schedule together with its unit layout.
type CreateScheduleRequest struct {
	ResourceType ResourceType        `json:"resource_type" binding:"required"`
	OperatorName string              `json:"operator_name" binding:"required"`
	RouteCode    string              `json:"route_code"`
	Origin       string              `json:"origin" binding:"required"`
	Destination  string              `json:"destination" binding:"required"`
	DepartsAt    time.Time           `json:"departs_at" binding:"required"`
	ArrivesAt    *time.Time          `json:"arrives_at,omitempty"`
	BaseFare     float64             `json:"base_fare" binding:"required,gt=0"`
	Currency     string              `json:"currency"`
	Units        []UnitLayoutRequest `json:"units" binding:"required,min=1"`
}

// ScheduleSearchFilter narrows schedule listings.
type ScheduleSearchFilter struct {
	ResourceType *ResourceType
	Origin       string
	Destination  string
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int
	Offset       int
}
