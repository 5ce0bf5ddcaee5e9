package store

import (
	"context"
	"time"

	"clinic-booking-server/internal/models"
)

// GroupCount is a single group-by bucket.
type GroupCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DayCount is the number of bookings created on one day of the month.
type DayCount struct {
	Day   int   `json:"day"`
	Count int64 `json:"count"`
}

// Stats is the dashboard summary. Every query behind it is read-only
// and an empty collection yields zero counts and empty slices.
type Stats struct {
	TotalAppointments    int64                              `json:"totalAppointments"`
	StatusBreakdown      map[models.AppointmentStatus]int64 `json:"statusBreakdown"`
	ByDepartment         []GroupCount                       `json:"byDepartment"`
	ByDoctor             []GroupCount                       `json:"byDoctor"`
	TodayAppointments    int64                              `json:"todayAppointments"`
	UpcomingAppointments int64                              `json:"upcomingAppointments"`
	MonthlyStats         []DayCount                         `json:"monthlyStats"`
}

// Stats computes the aggregate dashboard counts. "Today" and "upcoming"
// are anchored at the start of the calendar day containing now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	st := &Stats{
		StatusBreakdown: make(map[models.AppointmentStatus]int64, len(models.AllStatuses)),
		ByDepartment:    []GroupCount{},
		ByDoctor:        []GroupCount{},
		MonthlyStats:    []DayCount{},
	}
	for _, v := range models.AllStatuses {
		st.StatusBreakdown[v] = 0
	}

	var statusRows []struct {
		Status models.AppointmentStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		st.StatusBreakdown[row.Status] = row.Count
		st.TotalAppointments += row.Count
	}

	err = s.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("department AS name, COUNT(*) AS count").
		Where("department <> ''").
		Group("department").
		Order("count DESC").
		Scan(&st.ByDepartment).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("doctor_name AS name, COUNT(*) AS count").
		Group("doctor_name").
		Order("count DESC").
		Scan(&st.ByDoctor).Error
	if err != nil {
		return nil, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	err = s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("appointment_date = ?", today).
		Count(&st.TodayAppointments).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("status = ? AND appointment_date >= ?", models.StatusScheduled, today).
		Count(&st.UpcomingAppointments).Error
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	err = s.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("DAY(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ?", monthStart).
		Group("DAY(created_at)").
		Order("day ASC").
		Scan(&st.MonthlyStats).Error
	if err != nil {
		return nil, err
	}

	return st, nil
}
