// Package store is the persistence layer for appointments. All reads
// and writes go through an explicitly constructed Store holding the
// database handle; nothing here touches package-level state.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-booking-server/internal/models"
)

var (
	// ErrNotFound is returned when no appointment matches the given id.
	ErrNotFound = errors.New("appointment not found")
	// ErrSlotConflict is returned when a non-cancelled appointment
	// already occupies the requested (doctor, date, time) slot.
	ErrSlotConflict = errors.New("time slot is already booked for the selected doctor")
)

// Sort modes accepted by List.
const (
	SortDateAsc  = "date_asc"
	SortDateDesc = "date_desc"
	SortRecent   = "recent"
)

// ListFilter selects and pages appointments. All criteria are combined
// with AND; zero values mean "no filter".
type ListFilter struct {
	Status     string
	Department string
	Doctor     string // case-insensitive substring match
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
	Sort       string
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// Store provides appointment persistence over a gorm handle.
type Store struct {
	db *gorm.DB
}

// New creates a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create persists a new appointment after verifying its slot is free.
// The check and the insert run in one transaction with the matching
// rows locked; the unique slot index backstops the race regardless.
func (s *Store) Create(ctx context.Context, appt *models.Appointment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if appt.IsActive() {
			taken, err := slotTaken(tx, appt.DoctorName, appt.AppointmentDate, appt.AppointmentTime, "")
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotConflict
			}
		}
		return tx.Create(appt).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlotConflict
	}
	return err
}

// GetByID fetches a single appointment.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

// List returns one page of appointments matching the filter plus the
// total match count. A page past the end yields an empty slice.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Appointment, int64, error) {
	f.normalize()

	var total int64
	if err := applyFilter(s.db.WithContext(ctx).Model(&models.Appointment{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	appts := make([]models.Appointment, 0, f.Limit)
	err := applyFilter(s.db.WithContext(ctx).Model(&models.Appointment{}), f).
		Order(orderFor(f.Sort)).
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&appts).Error
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

// Update replaces the mutable fields of an existing appointment, with
// the same slot check as Create but excluding the record itself.
func (s *Store) Update(ctx context.Context, id string, upd *models.Appointment) (*models.Appointment, error) {
	var out models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Appointment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if upd.IsActive() {
			taken, err := slotTaken(tx, upd.DoctorName, upd.AppointmentDate, upd.AppointmentTime, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotConflict
			}
		}

		existing.PatientName = upd.PatientName
		existing.PatientEmail = upd.PatientEmail
		existing.PatientPhone = upd.PatientPhone
		existing.DoctorName = upd.DoctorName
		existing.Department = upd.Department
		existing.AppointmentDate = upd.AppointmentDate
		existing.AppointmentTime = upd.AppointmentTime
		existing.Reason = upd.Reason
		existing.Notes = upd.Notes
		existing.Status = upd.Status

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		out = existing
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrSlotConflict
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus changes only the status field. Moving a cancelled
// appointment back to an active status re-occupies its slot, so that
// path runs the conflict check again.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	var out models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Appointment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !existing.IsActive() && status != models.StatusCancelled {
			taken, err := slotTaken(tx, existing.DoctorName, existing.AppointmentDate, existing.AppointmentTime, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotConflict
			}
		}

		existing.Status = status
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		out = existing
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrSlotConflict
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an appointment permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func slotTaken(tx *gorm.DB, doctor string, date time.Time, timeOfDay, excludeID string) (bool, error) {
	q := tx.Model(&models.Appointment{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("doctor_name = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
			doctor, date, timeOfDay, models.StatusCancelled)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyFilter(q *gorm.DB, f ListFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	if f.Doctor != "" {
		q = q.Where("doctor_name LIKE ?", "%"+f.Doctor+"%")
	}
	if f.StartDate != nil {
		q = q.Where("appointment_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("appointment_date <= ?", *f.EndDate)
	}
	return q
}

func orderFor(sort string) string {
	switch sort {
	case SortDateDesc:
		return "appointment_date DESC, appointment_time DESC"
	case SortRecent:
		return "created_at DESC"
	default:
		return "appointment_date ASC, appointment_time ASC"
	}
}
