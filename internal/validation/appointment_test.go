package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-booking-server/internal/models"
)

var testNow = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

func validInput() AppointmentInput {
	return AppointmentInput{
		PatientName:     "John Doe",
		PatientEmail:    "john@example.com",
		PatientPhone:    "+48123456789",
		DoctorName:      "Dr. Smith",
		Department:      "Cardiology",
		AppointmentDate: "2025-03-10",
		AppointmentTime: "10:00",
		Reason:          "Routine checkup",
	}
}

func TestAppointmentValid(t *testing.T) {
	appt, errs := Appointment(validInput(), testNow)
	require.Nil(t, errs)

	assert.Equal(t, "John Doe", appt.PatientName)
	assert.Equal(t, "Dr. Smith", appt.DoctorName)
	assert.Equal(t, "10:00", appt.AppointmentTime)
	assert.Equal(t, models.StatusScheduled, appt.Status)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), appt.AppointmentDate)
}

func TestAppointmentNormalizes(t *testing.T) {
	in := validInput()
	in.PatientName = "  John Doe  "
	in.PatientEmail = " John@Example.COM "
	in.Reason = "  checkup "

	appt, errs := Appointment(in, testNow)
	require.Nil(t, errs)

	assert.Equal(t, "John Doe", appt.PatientName)
	assert.Equal(t, "john@example.com", appt.PatientEmail)
	assert.Equal(t, "checkup", appt.Reason)
}

func TestAppointmentOptionalFields(t *testing.T) {
	in := validInput()
	in.PatientEmail = ""
	in.PatientPhone = ""
	in.Department = ""
	in.Notes = ""

	_, errs := Appointment(in, testNow)
	assert.Nil(t, errs)
}

func TestAppointmentTimeFormat(t *testing.T) {
	for _, bad := range []string{"25:61", "9:00", "10:5", "1000", "10:60", "24:00", ""} {
		t.Run(bad, func(t *testing.T) {
			in := validInput()
			in.AppointmentTime = bad

			_, errs := Appointment(in, testNow)
			require.NotNil(t, errs)
			assert.True(t, hasField(errs, "appointmentTime"), "expected appointmentTime error, got %v", errs)
		})
	}

	for _, good := range []string{"00:00", "09:00", "23:59", "12:30"} {
		t.Run(good, func(t *testing.T) {
			in := validInput()
			in.AppointmentTime = good

			_, errs := Appointment(in, testNow)
			assert.Nil(t, errs)
		})
	}
}

func TestAppointmentDateRules(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"today is allowed", "2025-03-01", false},
		{"future is allowed", "2025-06-15", false},
		{"yesterday is rejected", "2025-02-28", true},
		{"garbage is rejected", "not-a-date", true},
		{"rfc3339 is accepted", "2025-03-10T09:00:00Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.AppointmentDate = tt.date

			_, errs := Appointment(in, testNow)
			if tt.wantErr {
				require.NotNil(t, errs)
				assert.True(t, hasField(errs, "appointmentDate"))
			} else {
				assert.Nil(t, errs)
			}
		})
	}
}

func TestAppointmentCollectsAllErrors(t *testing.T) {
	in := AppointmentInput{
		PatientName:     "J",
		PatientEmail:    "not-an-email",
		PatientPhone:    "abc",
		Department:      "Alchemy",
		AppointmentDate: "",
		AppointmentTime: "9:00",
		Reason:          "",
	}

	_, errs := Appointment(in, testNow)
	require.NotNil(t, errs)

	for _, field := range []string{
		"patientName", "patientEmail", "patientPhone", "doctorName",
		"department", "appointmentDate", "appointmentTime", "reason",
	} {
		assert.True(t, hasField(errs, field), "missing error for %s in %v", field, errs)
	}
}

func TestAppointmentFieldLengths(t *testing.T) {
	in := validInput()
	in.Reason = strings.Repeat("x", 501)
	_, errs := Appointment(in, testNow)
	require.NotNil(t, errs)
	assert.True(t, hasField(errs, "reason"))

	in = validInput()
	in.Notes = strings.Repeat("x", 1001)
	_, errs = Appointment(in, testNow)
	require.NotNil(t, errs)
	assert.True(t, hasField(errs, "notes"))

	in = validInput()
	in.Notes = strings.Repeat("x", 1000)
	_, errs = Appointment(in, testNow)
	assert.Nil(t, errs)
}

func TestAppointmentPhoneFormats(t *testing.T) {
	for _, good := range []string{"+48123456789", "1234567", "+15551234567"} {
		in := validInput()
		in.PatientPhone = good
		_, errs := Appointment(in, testNow)
		assert.Nil(t, errs, "phone %q should be valid", good)
	}

	for _, bad := range []string{"0123", "+0123", "abc", "+123456789012345678"} {
		in := validInput()
		in.PatientPhone = bad
		_, errs := Appointment(in, testNow)
		require.NotNil(t, errs, "phone %q should be invalid", bad)
		assert.True(t, hasField(errs, "patientPhone"))
	}
}

func TestAppointmentStatusField(t *testing.T) {
	in := validInput()
	in.Status = "completed"
	appt, errs := Appointment(in, testNow)
	require.Nil(t, errs)
	assert.Equal(t, models.StatusCompleted, appt.Status)

	in.Status = "bogus"
	_, errs = Appointment(in, testNow)
	require.NotNil(t, errs)
	assert.True(t, hasField(errs, "status"))
}

func hasField(errs FieldErrors, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
