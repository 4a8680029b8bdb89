package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Jane Doe", "jane@clinic.test", "hash", nil, "patient").
		WillReturnResult(sqlmock.NewResult(12, 1))

	id, err := repo.Create(context.Background(), "Jane Doe", "  JANE@Clinic.Test ", "hash", nil, "patient")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'jane@clinic.test' for key 'users.email'"))

	_, err := repo.Create(context.Background(), "Jane Doe", "jane@clinic.test", "hash", nil, "patient")
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "email", "password", "phone", "role", "created_at", "updated_at"}).
		AddRow(3, "Jane Doe", "jane@clinic.test", "hash", nil, "patient", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("jane@clinic.test").
		WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), "Jane@Clinic.Test")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), u.ID)
	assert.Equal(t, "patient", u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateUnknownID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), 99, "Jane Doe", "jane@clinic.test", nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A merge where every supplied value equals the stored one matches the row
// but affects nothing; that must not read as a missing user.
func TestMergeProfileNoopStillSucceeds(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	name := "Jane Doe"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET full_name=COALESCE(?, full_name), phone=COALESCE(?, phone) WHERE id=?")).
		WithArgs("Jane Doe", nil, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"id", "full_name", "email", "password", "phone", "role", "created_at", "updated_at"}).
		AddRow(3, "Jane Doe", "jane@clinic.test", "hash", nil, "patient", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(3).
		WillReturnRows(rows)

	assert.NoError(t, repo.MergeProfile(context.Background(), 3, &name, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
