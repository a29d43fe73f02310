package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/config"
	"github.com/wanderlite/travel-booking-backend/internal/database"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// LockService places and releases the temporary holds a traveler takes on
// units while reviewing a selection.
type LockService struct {
	scheduleRepo *database.ScheduleRepository
	availRepo    *database.AvailabilityRepository
	cfg          config.LockConfig
	logger       *logrus.Logger
}

// NewLockService creates a new LockService
func NewLockService(
	scheduleRepo *database.ScheduleRepository,
	availRepo *database.AvailabilityRepository,
	cfg config.LockConfig,
	logger *logrus.Logger,
) *LockService {
	return &LockService{
		scheduleRepo: scheduleRepo,
		availRepo:    availRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// TTLFor returns the hold duration for a resource type. Flights get a longer
// window because passenger details take longer to enter.
func (s *LockService) TTLFor(resourceType models.ResourceType) time.Duration {
	if resourceType == models.ResourceTypeFlight {
		return s.cfg.FlightTTL
	}
	return s.cfg.GroundTTL
}

// LockUnits holds every requested unit for the requester, or none of them.
// Re-locking units the requester already holds refreshes the shared expiry.
func (s *LockService) LockUnits(userID uuid.UUID, req *models.LockRequest) (*models.LockResponse, error) {
	travelDate, err := parseTravelDate(req.TravelDate)
	if err != nil {
		return nil, err
	}

	// 1. The schedule must exist and still be open for sale.
	schedule, err := s.scheduleRepo.GetByID(req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != models.ScheduleStatusScheduled {
		return nil, &models.InvalidStateError{
			Entity:  "schedule",
			Status:  string(schedule.Status),
			Message: "schedule is no longer open for booking",
		}
	}
	if schedule.Departed(time.Now()) {
		return nil, &models.InvalidStateError{
			Entity:  "schedule",
			Status:  string(schedule.Status),
			Message: "departure time has passed",
		}
	}

	// 2. Every requested unit must belong to this schedule.
	units, err := s.scheduleRepo.GetUnitsByIDs(req.ScheduleID, req.UnitIDs)
	if err != nil {
		return nil, err
	}
	if len(units) != len(req.UnitIDs) {
		return nil, &models.NotFoundError{Resource: "unit", ID: missingUnitID(req.UnitIDs, units)}
	}

	// 3. Hold the whole batch atomically.
	ttl := s.TTLFor(schedule.ResourceType)
	expiresAt := time.Now().Add(ttl)
	if err := s.availRepo.LockUnits(userID, req.ScheduleID, travelDate, req.UnitIDs, expiresAt); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"schedule_id": req.ScheduleID,
		"travel_date": req.TravelDate,
		"units":       len(req.UnitIDs),
		"ttl":         ttl.String(),
	}).Info("Units locked")

	return &models.LockResponse{
		LockedUnits: req.UnitIDs,
		ExpiresAt:   expiresAt,
		TTLSeconds:  int(ttl.Seconds()),
	}, nil
}

// ReleaseLocks drops the requester's live holds on a schedule/date. Called
// when the client abandons a selection; expiry would get there anyway.
func (s *LockService) ReleaseLocks(userID uuid.UUID, scheduleID, travelDateStr string) (int, error) {
	travelDate, err := parseTravelDate(travelDateStr)
	if err != nil {
		return 0, err
	}
	released, err := s.availRepo.ReleaseLocksForHolder(userID, scheduleID, travelDate)
	if err != nil {
		return 0, fmt.Errorf("failed to release locks: %w", err)
	}
	if released > 0 {
		s.logger.WithFields(logrus.Fields{
			"user_id":     userID,
			"schedule_id": scheduleID,
			"released":    released,
		}).Info("Locks released")
	}
	return released, nil
}

// GetUnitMap returns the schedule's seat/room map with effective
// availability for the requested date.
func (s *LockService) GetUnitMap(scheduleID, travelDateStr string) ([]models.UnitWithAvailability, error) {
	travelDate, err := parseTravelDate(travelDateStr)
	if err != nil {
		return nil, err
	}
	if _, err := s.scheduleRepo.GetByID(scheduleID); err != nil {
		return nil, err
	}
	return s.scheduleRepo.GetUnitMap(scheduleID, travelDate, time.Now())
}

// parseTravelDate parses a YYYY-MM-DD travel date.
func parseTravelDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: "travel_date", Msg: "must be YYYY-MM-DD"}
	}
	return t, nil
}

// missingUnitID reports the first requested ID absent from the fetched set.
func missingUnitID(requested []string, found []models.BookableUnit) string {
	known := make(map[string]bool, len(found))
	for _, u := range found {
		known[u.ID] = true
	}
	for _, id := range requested {
		if !known[id] {
			return id
		}
	}
	return ""
}
