package repository

import (
	"context"
	"database/sql"
	"time"
)

// DashboardRepo aggregates revenue and volume statistics for the admin
// dashboard. Because cancellation is a soft status flip, cancelled
// appointments stay in the counts, which is exactly what the history view
// wants.
type DashboardRepo struct{ DB *sql.DB }

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{DB: db} }

// DayRevenue is one day's completed-payment revenue.
type DayRevenue struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// DoctorRevenue is the completed revenue attributed to one doctor through
// payment -> appointment -> doctor links.
type DoctorRevenue struct {
	FullName *string `json:"full_name"`
	Total    float64 `json:"total"`
}

// Stats is the full admin dashboard payload.
type Stats struct {
	Total            float64         `json:"total"`
	WeekData         []DayRevenue    `json:"weekData"`
	DoctorStats      []DoctorRevenue `json:"doctorStats"`
	AppointmentCount int64           `json:"appointmentCount"`
	PatientCount     int64           `json:"patientCount"`
	DoctorCount      int64           `json:"doctorCount"`
}

// Collect runs the aggregate queries and assembles the dashboard payload.
func (r *DashboardRepo) Collect(ctx context.Context) (Stats, error) {
	var s Stats

	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'completed'").Scan(&s.Total)
	if err != nil {
		return Stats{}, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT DATE(created_at) AS day, COALESCE(SUM(amount), 0) AS amount
		FROM payments
		WHERE status = 'completed' AND created_at >= NOW() - INTERVAL 7 DAY
		GROUP BY DATE(created_at)
		ORDER BY day DESC`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var d DayRevenue
		var day time.Time
		if err := rows.Scan(&day, &d.Amount); err != nil {
			return Stats{}, err
		}
		d.Date = day.Format("2006-01-02")
		s.WeekData = append(s.WeekData, d)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	drows, err := r.DB.QueryContext(ctx, `
		SELECT u.full_name, COALESCE(SUM(p.amount), 0) AS total
		FROM payments p
		LEFT JOIN appointments a ON p.appointment_id = a.id
		LEFT JOIN doctors d ON a.doctor_id = d.user_id
		LEFT JOIN users u ON d.user_id = u.id
		WHERE p.status = 'completed'
		GROUP BY u.id, u.full_name
		ORDER BY total DESC`)
	if err != nil {
		return Stats{}, err
	}
	defer drows.Close()
	for drows.Next() {
		var d DoctorRevenue
		if err := drows.Scan(&d.FullName, &d.Total); err != nil {
			return Stats{}, err
		}
		s.DoctorStats = append(s.DoctorStats, d)
	}
	if err := drows.Err(); err != nil {
		return Stats{}, err
	}

	for _, c := range []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM appointments", &s.AppointmentCount},
		{"SELECT COUNT(*) FROM patients", &s.PatientCount},
		{"SELECT COUNT(*) FROM doctors", &s.DoctorCount},
	} {
		if err := r.DB.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return Stats{}, err
		}
	}
	return s, nil
}
