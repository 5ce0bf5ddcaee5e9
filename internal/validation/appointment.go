// Package validation holds the single set of field rules shared by the
// create and update paths. It reports every violated field at once and
// never panics on malformed input.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"clinic-booking-server/internal/models"
)

// FieldError describes one violated rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the full batch of violations for a payload.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(msgs, ", ")
}

// AppointmentInput is the raw booking payload as submitted by a client.
// Date and status arrive as strings so that bad values turn into field
// errors instead of JSON binding failures.
type AppointmentInput struct {
	PatientName     string `json:"patientName" validate:"required,min=2,max=100"`
	PatientEmail    string `json:"patientEmail" validate:"omitempty,email"`
	PatientPhone    string `json:"patientPhone" validate:"omitempty,phone"`
	DoctorName      string `json:"doctorName" validate:"required,max=100"`
	Department      string `json:"department" validate:"omitempty,department"`
	AppointmentDate string `json:"appointmentDate" validate:"required"`
	AppointmentTime string `json:"appointmentTime" validate:"required,hhmm"`
	Reason          string `json:"reason" validate:"required,max=500"`
	Notes           string `json:"notes" validate:"omitempty,max=1000"`
	Status          string `json:"status" validate:"omitempty,status"`
}

var (
	phoneRe = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)
	hhmmRe  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report errors under the wire names, not the Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmRe.MatchString(fl.Field().String())
	})
	v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return models.IsValidDepartment(fl.Field().String())
	})
	v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return models.AppointmentStatus(fl.Field().String()).IsValid()
	})

	return v
}

// normalize trims every string field and lower-cases the email.
func (in *AppointmentInput) normalize() {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.PatientEmail = strings.ToLower(strings.TrimSpace(in.PatientEmail))
	in.PatientPhone = strings.TrimSpace(in.PatientPhone)
	in.DoctorName = strings.TrimSpace(in.DoctorName)
	in.Department = strings.TrimSpace(in.Department)
	in.AppointmentDate = strings.TrimSpace(in.AppointmentDate)
	in.AppointmentTime = strings.TrimSpace(in.AppointmentTime)
	in.Reason = strings.TrimSpace(in.Reason)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Status = strings.TrimSpace(in.Status)
}

// Appointment normalizes and validates a booking payload. It returns
// either a ready-to-persist appointment value or the full list of field
// errors; it never returns both.
func Appointment(in AppointmentInput, now time.Time) (*models.Appointment, FieldErrors) {
	in.normalize()

	var errs FieldErrors
	if err := validate.Struct(in); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			errs = append(errs, FieldError{Field: "payload", Message: err.Error()})
		}
		for _, fe := range verrs {
			errs = append(errs, FieldError{Field: fe.Field(), Message: messageFor(fe.Field(), fe.Tag())})
		}
	}

	var date time.Time
	if in.AppointmentDate != "" {
		parsed, err := parseDate(in.AppointmentDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "appointmentDate", Message: "Appointment date must be a valid date (YYYY-MM-DD)"})
		} else {
			date = parsed
			// Start-of-day granularity: booking for today is allowed,
			// anything dated before today is rejected.
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			if date.Before(today) {
				errs = append(errs, FieldError{Field: "appointmentDate", Message: "Appointment date cannot be in the past"})
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	status := models.AppointmentStatus(in.Status)
	if in.Status == "" {
		status = models.StatusScheduled
	}

	return &models.Appointment{
		PatientName:     in.PatientName,
		PatientEmail:    in.PatientEmail,
		PatientPhone:    in.PatientPhone,
		DoctorName:      in.DoctorName,
		Department:      in.Department,
		AppointmentDate: date,
		AppointmentTime: in.AppointmentTime,
		Reason:          in.Reason,
		Notes:           in.Notes,
		Status:          status,
	}, nil
}

// parseDate accepts a plain calendar date or a full RFC 3339 timestamp
// and reduces either to UTC midnight of that calendar day.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func messageFor(field, tag string) string {
	switch field {
	case "patientName":
		if tag == "required" {
			return "Please add a patient name"
		}
		return "Patient name must be between 2 and 100 characters"
	case "patientEmail":
		return "Please provide a valid email"
	case "patientPhone":
		return "Please provide a valid phone number"
	case "doctorName":
		if tag == "required" {
			return "Please add a doctor name"
		}
		return "Doctor name can not be more than 100 characters"
	case "department":
		return "Unknown department"
	case "appointmentDate":
		return "Please add an appointment date"
	case "appointmentTime":
		if tag == "required" {
			return "Please add an appointment time"
		}
		return "Please provide a valid time format (HH:MM)"
	case "reason":
		if tag == "required" {
			return "Please add a reason for the appointment"
		}
		return "Reason can not be more than 500 characters"
	case "notes":
		return "Notes can not be more than 1000 characters"
	case "status":
		return "Invalid status value"
	}
	return "Invalid value"
}
