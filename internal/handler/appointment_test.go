package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmaniKE/clinic-back/internal/notify"
	"github.com/ArmaniKE/clinic-back/internal/repository"
	"github.com/ArmaniKE/clinic-back/internal/ws"
)

func newApptHandler(t *testing.T) (*AppointmentHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return &AppointmentHandler{
		Appts:    repository.NewAppointmentRepo(db),
		Users:    repository.NewUserRepo(db),
		Services: repository.NewServiceRepo(db),
		Notifier: notify.New(ws.NewHub()),
	}, mock
}

// asUser mimics what the JWT middleware stores: claims straight from the
// decoded token, so the subject arrives as a float64.
func asUser(c echo.Context, id float64, role string) {
	c.Set("user_id", id)
	c.Set("role", role)
}

func apptRows(id, patientID, doctorID uint64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "service_id", "date", "time", "reason", "status", "created_at", "updated_at"}).
		AddRow(id, patientID, doctorID, 3, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "10:00:00", "checkup", status, now, now)
}

func TestCreateAppointmentConflict(t *testing.T) {
	h, mock := newApptHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE doctor_id=?")).
		WithArgs(2, "2026-09-01", "10:00").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	c, rec := jsonRequest(t, http.MethodPost, "/appointments",
		`{"doctor_id":2,"service_id":3,"date":"2026-09-01","time":"10:00","reason":"checkup"}`)
	asUser(c, 5, "patient")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"slot already taken"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAppointmentValidation(t *testing.T) {
	h, _ := newApptHandler(t)

	c, rec := jsonRequest(t, http.MethodPost, "/appointments",
		`{"doctor_id":2,"service_id":3,"date":"01.09.2026","time":"10:00"}`)
	asUser(c, 5, "patient")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAppointmentForeignPatient(t *testing.T) {
	h, mock := newApptHandler(t)

	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id=").
		WithArgs(7).
		WillReturnRows(apptRows(7, 1, 2, "pending"))

	c, rec := jsonRequest(t, http.MethodPut, "/appointments/7", `{"reason":"new reason"}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	asUser(c, 5, "patient")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateAppointmentPatientCannotSetStatus(t *testing.T) {
	h, mock := newApptHandler(t)

	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id=").
		WithArgs(7).
		WillReturnRows(apptRows(7, 5, 2, "pending"))

	c, rec := jsonRequest(t, http.MethodPut, "/appointments/7", `{"status":"completed"}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	asUser(c, 5, "patient")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"patients cannot change status"}`, rec.Body.String())
}

func TestUpdateAppointmentDoctorForeignSchedule(t *testing.T) {
	h, mock := newApptHandler(t)

	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id=").
		WithArgs(7).
		WillReturnRows(apptRows(7, 5, 2, "pending"))

	c, rec := jsonRequest(t, http.MethodPut, "/appointments/7", `{"status":"completed"}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	asUser(c, 9, "doctor")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateAppointmentNoFields(t *testing.T) {
	h, mock := newApptHandler(t)

	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id=").
		WithArgs(7).
		WillReturnRows(apptRows(7, 5, 2, "pending"))

	c, rec := jsonRequest(t, http.MethodPut, "/appointments/7", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	asUser(c, 5, "patient")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"no fields to update"}`, rec.Body.String())
}

// An empty string is not a valid reschedule target; it must never reach
// the UPDATE.
func TestUpdateAppointmentEmptyDateRejected(t *testing.T) {
	h, mock := newApptHandler(t)

	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id=").
		WithArgs(7).
		WillReturnRows(apptRows(7, 5, 2, "pending"))

	c, rec := jsonRequest(t, http.MethodPut, "/appointments/7", `{"date":""}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	asUser(c, 5, "patient")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"date must be YYYY-MM-DD"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAppointmentEmptyTimeRejected(t *testing.T) {
	h, mock := newApptHandler(t)

	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id=").
		WithArgs(7).
		WillReturnRows(apptRows(7, 5, 2, "pending"))

	c, rec := jsonRequest(t, http.MethodPut, "/appointments/7", `{"time":""}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	asUser(c, 5, "patient")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"time must be HH:MM"}`, rec.Body.String())
}

// The second DELETE on the same appointment must not re-notify; it reports
// the row as gone.
func TestCancelTwiceReportsNotFound(t *testing.T) {
	h, mock := newApptHandler(t)

	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id=").
		WithArgs(7).
		WillReturnRows(apptRows(7, 5, 2, "cancelled"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status='cancelled'")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id=").
		WithArgs(7).
		WillReturnRows(apptRows(7, 5, 2, "cancelled"))

	c, rec := jsonRequest(t, http.MethodDelete, "/appointments/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	asUser(c, 5, "patient")
	require.NoError(t, h.Cancel(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"appointment already cancelled"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForDoctorOwnScheduleOnly(t *testing.T) {
	h, _ := newApptHandler(t)

	c, rec := jsonRequest(t, http.MethodGet, "/appointments/doctor/2", "")
	c.SetParamNames("id")
	c.SetParamValues("2")
	asUser(c, 9, "doctor")
	require.NoError(t, h.ListForDoctor(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// A patient asking for someone else's rows via the filter still gets their
// own.
func TestListPinsPatientToOwnRows(t *testing.T) {
	h, mock := newApptHandler(t)

	mock.ExpectQuery("SELECT .+ FROM appointments a").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "service_id", "date", "time", "reason", "status", "patient_name", "doctor_name", "service_name", "service_price"}))

	c, rec := jsonRequest(t, http.MethodGet, "/appointments?patient_id=1", "")
	asUser(c, 5, "patient")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
