package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// The cascade removes appointments, then the profile, then the user, all
// in one transaction; a missing profile aborts before the user row.
func TestDoctorDeleteCascade(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoctorRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE doctor_id=?")).
		WithArgs(8).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM doctors WHERE user_id=?")).
		WithArgs(8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.DeleteCascadeByUserID(context.Background(), 8))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorDeleteCascadeUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoctorRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE doctor_id=?")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM doctors WHERE user_id=?")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteCascadeByUserID(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
