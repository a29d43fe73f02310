package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// TicketService renders booking confirmations as downloadable PDF tickets.
type TicketService struct {
	bookings *BookingService
	logger   *logrus.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(bookings *BookingService, logger *logrus.Logger) *TicketService {
	return &TicketService{bookings: bookings, logger: logger}
}

// GenerateTicket renders the ticket PDF for a booking. Returns the document
// bytes and a download filename. Cancelled bookings get no ticket.
func (s *TicketService) GenerateTicket(reference string, userID uuid.UUID, isAdmin bool) ([]byte, string, error) {
	detail, err := s.bookings.GetBooking(reference, userID, isAdmin)
	if err != nil {
		return nil, "", err
	}
	if detail.Booking.Status == models.BookingStatusCancelled {
		return nil, "", &models.InvalidStateError{
			Entity:  "booking",
			Status:  string(detail.Booking.Status),
			Message: "no ticket for a cancelled booking",
		}
	}

	body, err := buildTicketPDF(detail)
	if err != nil {
		return nil, "", err
	}

	s.logger.WithField("reference", reference).Info("Ticket generated")
	filename := fmt.Sprintf("ticket-%s.pdf", strings.ToLower(reference))
	return body, filename, nil
}

func buildTicketPDF(detail *models.BookingDetail) ([]byte, error) {
	booking := detail.Booking
	schedule := detail.Schedule

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Wanderlite Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "WANDERLITE E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, booking.Reference)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Type: %s", strings.ToUpper(string(booking.ResourceType))),
		fmt.Sprintf("Travel date: %s", booking.TravelDate.Format("Mon, 02 Jan 2006")),
		fmt.Sprintf("Status: %s", booking.Status),
		fmt.Sprintf("Contact: %s (%s)", booking.ContactName, booking.ContactPhone),
	}
	if schedule != nil {
		lines = append(lines,
			fmt.Sprintf("Operator: %s", schedule.OperatorName),
			fmt.Sprintf("Route: %s -> %s", schedule.Origin, schedule.Destination),
			fmt.Sprintf("Departs: %s", schedule.DepartsAt.Format("02 Jan 2006 15:04")),
		)
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Passengers")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, p := range detail.Passengers {
		pdf.Cell(0, 6, fmt.Sprintf("%s  |  %s  |  %s  |  %.2f %s",
			p.UnitLabel, p.FullName, p.AgeCategory, p.AmountCharged, booking.Currency))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Total paid: %.2f %s", booking.TotalAmount, booking.Currency))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Present this ticket together with a valid photo ID at boarding or check-in. Refunds follow the cancellation policy of the booked service.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}
