package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A service stays deletable only while no appointment of any status
// references it.
func TestServiceDeleteBlockedByReferences(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServiceRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE service_id=?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	err := repo.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceDeleteUnreferenced(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServiceRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE service_id=?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM services WHERE id=?")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceDeleteUnknownID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServiceRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE service_id=?")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM services WHERE id=?")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceList(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServiceRepo(db)

	rows := sqlmock.NewRows([]string{"id", "name", "price"}).
		AddRow(1, "Consultation", 50.0).
		AddRow(2, "X-Ray", 120.0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM services ORDER BY name")).
		WillReturnRows(rows)

	out, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Consultation", out[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
