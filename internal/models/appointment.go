package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

// AllStatuses lists every valid status value, in display order.
var AllStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// IsValid reports whether s is a member of the status enum.
func (s AppointmentStatus) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Departments is the closed set of clinic departments a booking may target.
var Departments = []string{
	"General Medicine",
	"Cardiology",
	"Dermatology",
	"Orthopedics",
	"Pediatrics",
	"Gynecology",
	"Neurology",
	"Psychiatry",
}

// IsValidDepartment reports whether d names a known department.
func IsValidDepartment(d string) bool {
	for _, v := range Departments {
		if d == v {
			return true
		}
	}
	return false
}

// Appointment represents a booked clinic appointment. Dates are stored
// normalized to UTC midnight; the time of day lives in AppointmentTime
// as an HH:MM string.
type Appointment struct {
	BaseModel
	PatientName     string            `gorm:"size:100;not null" json:"patientName"`
	PatientEmail    string            `gorm:"size:254;index" json:"patientEmail,omitempty"`
	PatientPhone    string            `gorm:"size:20" json:"patientPhone,omitempty"`
	DoctorName      string            `gorm:"size:100;not null;index" json:"doctorName"`
	Department      string            `gorm:"size:50;index" json:"department,omitempty"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index:idx_appointments_slot,priority:1" json:"appointmentDate"`
	AppointmentTime string            `gorm:"size:5;not null;index:idx_appointments_slot,priority:2" json:"appointmentTime"`
	Reason          string            `gorm:"size:500;not null" json:"reason"`
	Notes           string            `gorm:"size:1000" json:"notes,omitempty"`
	Status          AppointmentStatus `gorm:"size:20;not null;default:'scheduled';index" json:"status"`

	// SlotKey backs the unique index guaranteeing at most one active
	// appointment per (doctor, date, time). NULL for cancelled rows, so
	// any number of cancelled bookings may share a slot.
	SlotKey *string `gorm:"size:191;uniqueIndex" json:"-"`
}

// SlotKeyFor builds the derived uniqueness key for an active slot.
func SlotKeyFor(doctor string, date time.Time, timeOfDay string) string {
	return fmt.Sprintf("%s|%s|%s", doctor, date.Format("2006-01-02"), timeOfDay)
}

// BeforeSave keeps SlotKey in sync with the slot fields and status.
func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	if a.Status == StatusCancelled {
		a.SlotKey = nil
		return nil
	}
	key := SlotKeyFor(a.DoctorName, a.AppointmentDate, a.AppointmentTime)
	a.SlotKey = &key
	return nil
}

// IsActive reports whether the appointment still occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}
