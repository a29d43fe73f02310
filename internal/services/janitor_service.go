package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/wanderlite/travel-booking-backend/internal/database"
)

// JanitorService runs the scheduled housekeeping jobs. None of them are
// load-bearing for correctness: lock expiry is resolved lazily on read, so
// the sweeps only keep the tables tidy and the dashboards honest.
type JanitorService struct {
	cron         *cron.Cron
	availRepo    *database.AvailabilityRepository
	scheduleRepo *database.ScheduleRepository
	bookingRepo  *database.BookingRepository
	userRepo     *database.UserRepository
	logger       *logrus.Logger
}

// NewJanitorService creates a new JanitorService
func NewJanitorService(
	availRepo *database.AvailabilityRepository,
	scheduleRepo *database.ScheduleRepository,
	bookingRepo *database.BookingRepository,
	userRepo *database.UserRepository,
	logger *logrus.Logger,
) *JanitorService {
	return &JanitorService{
		cron:         cron.New(),
		availRepo:    availRepo,
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// Start schedules and starts all housekeeping jobs.
func (s *JanitorService) Start() error {
	// Reset long-expired lock rows every 10 minutes.
	if _, err := s.cron.AddFunc("*/10 * * * *", s.sweepExpiredLocks); err != nil {
		return fmt.Errorf("failed to schedule lock sweep: %w", err)
	}

	// Flip departed schedules and complete their bookings hourly.
	if _, err := s.cron.AddFunc("5 * * * *", s.completeDepartures); err != nil {
		return fmt.Errorf("failed to schedule departure completion: %w", err)
	}

	// Purge dead refresh sessions daily at 04:00.
	if _, err := s.cron.AddFunc("0 4 * * *", s.purgeSessions); err != nil {
		return fmt.Errorf("failed to schedule session purge: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Janitor started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *JanitorService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Janitor stopped")
}

func (s *JanitorService) sweepExpiredLocks() {
	// Only rows whose expiry passed at least a minute ago, so the sweep
	// never races a finalization that is reading its own live lock.
	swept, err := s.availRepo.SweepExpiredLocks(time.Minute)
	if err != nil {
		s.logger.WithError(err).Error("Lock sweep failed")
		return
	}
	if swept > 0 {
		s.logger.WithField("swept", swept).Info("Expired locks reset")
	}
}

func (s *JanitorService) completeDepartures() {
	now := time.Now()

	departed, err := s.scheduleRepo.MarkDepartedBefore(now)
	if err != nil {
		s.logger.WithError(err).Error("Departure flip failed")
		return
	}
	completed, err := s.bookingRepo.CompleteDepartedBefore(now)
	if err != nil {
		s.logger.WithError(err).Error("Booking completion failed")
		return
	}
	if departed > 0 || completed > 0 {
		s.logger.WithFields(logrus.Fields{
			"schedules": departed,
			"bookings":  completed,
		}).Info("Departures completed")
	}
}

func (s *JanitorService) purgeSessions() {
	purged, err := s.userRepo.DeleteExpiredSessions(30 * 24 * time.Hour)
	if err != nil {
		s.logger.WithError(err).Error("Session purge failed")
		return
	}
	if purged > 0 {
		s.logger.WithField("purged", purged).Info("Expired sessions purged")
	}
}
