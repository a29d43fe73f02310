package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// ScheduleRepository handles schedules and their bookable units.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `
	id, resource_type, operator_name, route_code, origin, destination,
	departs_at, arrives_at, base_fare, currency, total_units, available_units,
	status, created_at, updated_at`

const unitColumns = `
	id, schedule_id, label, row_number, position, unit_class, price_modifier, created_at`

// GetByID fetches a schedule by its ID.
func (r *ScheduleRepository) GetByID(id string) (*models.Schedule, error) {
	var schedule models.Schedule
	err := r.db.Get(&schedule, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "schedule", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

// Search returns open schedules matching the filter, soonest departure
// first. Every filter field is optional.
func (r *ScheduleRepository) Search(filter models.ScheduleSearchFilter) ([]models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE status = 'scheduled'`
	args := []interface{}{}
	idx := 1

	if filter.ResourceType != nil {
		query += fmt.Sprintf(" AND resource_type = $%d", idx)
		args = append(args, *filter.ResourceType)
		idx++
	}
	if filter.Origin != "" {
		query += fmt.Sprintf(" AND LOWER(origin) = LOWER($%d)", idx)
		args = append(args, strings.TrimSpace(filter.Origin))
		idx++
	}
	if filter.Destination != "" {
		query += fmt.Sprintf(" AND LOWER(destination) = LOWER($%d)", idx)
		args = append(args, strings.TrimSpace(filter.Destination))
		idx++
	}
	if filter.DateFrom != nil {
		query += fmt.Sprintf(" AND departs_at >= $%d", idx)
		args = append(args, *filter.DateFrom)
		idx++
	}
	if filter.DateTo != nil {
		query += fmt.Sprintf(" AND departs_at < $%d", idx)
		args = append(args, *filter.DateTo)
		idx++
	}

	query += " ORDER BY departs_at ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, filter.Limit)
		idx++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, filter.Offset)
	}

	var schedules []models.Schedule
	if err := r.db.Select(&schedules, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search schedules: %w", err)
	}
	return schedules, nil
}

// ListUnits returns every bookable unit of a schedule in layout order.
func (r *ScheduleRepository) ListUnits(scheduleID string) ([]models.BookableUnit, error) {
	var units []models.BookableUnit
	err := r.db.Select(&units, `
		SELECT `+unitColumns+` FROM bookable_units
		WHERE schedule_id = $1
		ORDER BY row_number, position`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

// GetUnitsByIDs fetches units by ID, constrained to one schedule so callers
// cannot mix units across departures.
func (r *ScheduleRepository) GetUnitsByIDs(scheduleID string, unitIDs []string) ([]models.BookableUnit, error) {
	if len(unitIDs) == 0 {
		return []models.BookableUnit{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+unitColumns+` FROM bookable_units
		WHERE schedule_id = ? AND id IN (?)`, scheduleID, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build units query: %w", err)
	}
	query = r.db.Rebind(query)

	var units []models.BookableUnit
	if err := r.db.Select(&units, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get units: %w", err)
	}
	return units, nil
}

// unitAvailabilityRow is the raw seat-map join row. The ledger columns stay
// nullable here; the effective status is resolved in Go so the lock-expiry
// rule lives in exactly one place.
type unitAvailabilityRow struct {
	models.BookableUnit
	RecordStatus  *models.AvailabilityStatus `db:"record_status"`
	LockExpiresAt *time.Time                 `db:"lock_expires_at"`
}

// GetUnitMap returns every unit of a schedule with its effective
// availability for the given travel date. Units with no ledger row are
// available; expired locks read as available.
func (r *ScheduleRepository) GetUnitMap(scheduleID string, travelDate time.Time, now time.Time) ([]models.UnitWithAvailability, error) {
	var rows []unitAvailabilityRow
	err := r.db.Select(&rows, `
		SELECT u.id, u.schedule_id, u.label, u.row_number, u.position, u.unit_class, u.price_modifier, u.created_at,
		       ar.status AS record_status, ar.lock_expires_at
		FROM bookable_units u
		LEFT JOIN availability_records ar
		       ON ar.unit_id = u.id AND ar.travel_date = $2
		WHERE u.schedule_id = $1
		ORDER BY u.row_number, u.position`, scheduleID, travelDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get unit map: %w", err)
	}

	units := make([]models.UnitWithAvailability, 0, len(rows))
	for _, row := range rows {
		status := models.AvailabilityStatusAvailable
		if row.RecordStatus != nil {
			record := models.AvailabilityRecord{
				Status:        *row.RecordStatus,
				LockExpiresAt: row.LockExpiresAt,
			}
			status = record.EffectiveStatus(now)
		}
		units = append(units, models.UnitWithAvailability{
			BookableUnit: row.BookableUnit,
			Status:       status,
		})
	}
	return units, nil
}

// Create inserts a schedule with a generated ID. AvailableUnits starts at
// the full layout size.
func (r *ScheduleRepository) Create(schedule *models.Schedule) error {
	schedule.ID = uuid.New().String()
	if schedule.Currency == "" {
		schedule.Currency = "USD"
	}
	schedule.AvailableUnits = schedule.TotalUnits
	_, err := r.db.Exec(`
		INSERT INTO schedules (
			id, resource_type, operator_name, route_code, origin, destination,
			departs_at, arrives_at, base_fare, currency, total_units, available_units,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11, 'scheduled', NOW(), NOW())`,
		schedule.ID, schedule.ResourceType, schedule.OperatorName, schedule.RouteCode,
		schedule.Origin, schedule.Destination, schedule.DepartsAt, schedule.ArrivesAt,
		schedule.BaseFare, schedule.Currency, schedule.TotalUnits)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// CreateUnits bulk-inserts the unit layout for a schedule.
func (r *ScheduleRepository) CreateUnits(scheduleID string, units []models.BookableUnit) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range units {
		units[i].ID = uuid.New().String()
		units[i].ScheduleID = scheduleID
		_, err := tx.Exec(`
			INSERT INTO bookable_units (id, schedule_id, label, row_number, position, unit_class, price_modifier, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
			units[i].ID, scheduleID, units[i].Label, units[i].RowNumber,
			units[i].Position, units[i].UnitClass, units[i].PriceModifier)
		if err != nil {
			return fmt.Errorf("failed to create unit %s: %w", units[i].Label, err)
		}
	}
	return tx.Commit()
}

// UpdateStatus moves a schedule between scheduled, cancelled and departed.
func (r *ScheduleRepository) UpdateStatus(id string, status models.ScheduleStatus) error {
	result, err := r.db.Exec(`
		UPDATE schedules SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update schedule status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &models.NotFoundError{Resource: "schedule", ID: id}
	}
	return nil
}

// MarkDepartedBefore flips schedules whose departure time has passed.
// Used by the housekeeping job; returns how many were flipped.
func (r *ScheduleRepository) MarkDepartedBefore(now time.Time) (int, error) {
	result, err := r.db.Exec(`
		UPDATE schedules SET status = 'departed', updated_at = NOW()
		WHERE status = 'scheduled' AND departs_at < $1`, now)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
