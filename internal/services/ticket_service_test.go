package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlite/travel-booking-backend/internal/models"
)

func TestBuildTicketPDF(t *testing.T) {
	departsAt := time.Date(2026, 9, 10, 8, 30, 0, 0, time.UTC)
	detail := &models.BookingDetail{
		Booking: models.Booking{
			Reference:    "WL-20260901-ABC234",
			UserID:       uuid.New(),
			ResourceType: models.ResourceTypeBus,
			TravelDate:   departsAt,
			Status:       models.BookingStatusConfirmed,
			TotalAmount:  213.75,
			Currency:     "USD",
			ContactName:  "Asha Perera",
			ContactPhone: "+94771234567",
		},
		Passengers: []models.Passenger{
			{UnitLabel: "12A", FullName: "Asha Perera", AgeCategory: models.AgeCategoryAdult, AmountCharged: 100},
			{UnitLabel: "12B", FullName: "Nilu Perera", AgeCategory: models.AgeCategoryChild, AmountCharged: 75},
		},
		Schedule: &models.Schedule{
			OperatorName: "GreenLine",
			Origin:       "Colombo",
			Destination:  "Kandy",
			DepartsAt:    departsAt,
		},
	}

	body, err := buildTicketPDF(detail)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	// PDF files start with the %PDF magic.
	assert.Equal(t, "%PDF", string(body[:4]))
}

func TestBuildTicketPDF_WithoutSchedule(t *testing.T) {
	detail := &models.BookingDetail{
		Booking: models.Booking{
			Reference:    "WL-20260901-XYZ789",
			ResourceType: models.ResourceTypeHotel,
			TravelDate:   time.Now(),
			Status:       models.BookingStatusConfirmed,
			Currency:     "USD",
		},
	}

	body, err := buildTicketPDF(detail)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
