package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGRepoGetNotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mock.ExpectQuery("SELECT profile FROM business_profiles").
		WithArgs("u1").
		WillReturnError(sql.ErrNoRows)

	_, err = (&PGRepo{DB: conn}).Get(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoUpsertCreatesUnderAdvisoryLock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT profile FROM business_profiles").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"profile"}))
	mock.ExpectExec("INSERT INTO business_profiles").
		WithArgs("u1", sqlmock.AnyArg(), now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	p, err := (&PGRepo{DB: conn}).Upsert(context.Background(), "u1", Patch{CompanyName: String("CV Maju Jaya")}, now)
	require.NoError(t, err)
	assert.Equal(t, "CV Maju Jaya", p.CompanyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoUpsertMergesExisting(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	created := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	now := created.Add(24 * time.Hour)
	existing, err := json.Marshal(BusinessProfile{UserID: "u1", CompanyName: "CV Maju Jaya", Category: "Furniture", CreatedAt: created})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT profile FROM business_profiles").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"profile"}).AddRow(existing))
	mock.ExpectExec("INSERT INTO business_profiles").
		WithArgs("u1", sqlmock.AnyArg(), sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := (&PGRepo{DB: conn}).Upsert(context.Background(), "u1", Patch{City: String("Jepara"), Category: String("")}, now)
	require.NoError(t, err)
	assert.Equal(t, "CV Maju Jaya", p.CompanyName)
	assert.Equal(t, "Furniture", p.Category)
	assert.Equal(t, "Jepara", p.Location.City)
	assert.True(t, p.CreatedAt.Equal(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoUpsertRollsBackOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT profile FROM business_profiles").WithArgs("u1").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = (&PGRepo{DB: conn}).Upsert(context.Background(), "u1", Patch{City: String("Jepara")}, time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
