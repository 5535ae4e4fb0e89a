package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hospital-ops-api/internal/models"
)

func newDoctorRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDoctorRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM doctors WHERE 1=1 AND specialty = $1 AND active = $2 AND name ILIKE $3")).
		WithArgs("cardiology", true, "%ayu%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "specialty", "active", "created_at", "updated_at"}).
		AddRow("doc-1", "Dr. Ayu", "cardiology", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC LIMIT $4 OFFSET $5")).
		WithArgs("cardiology", true, "%ayu%", 10, 10).
		WillReturnRows(rows)

	doctors, total, err := repo.List(context.Background(), models.DoctorFilter{
		Specialty: "cardiology",
		Active:    &active,
		Search:    "ayu",
		Page:      2,
		PageSize:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Ayu", doctors[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepositoryListDefaultsPaging(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM doctors WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "specialty", "active", "created_at", "updated_at"}))

	doctors, total, err := repo.List(context.Background(), models.DoctorFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, doctors)
}

func TestDoctorRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM doctors WHERE id = $1")).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "specialty", "active", "created_at", "updated_at"}).
			AddRow("doc-1", "Dr. Ayu", "cardiology", true, now, now))

	doctor, err := repo.FindByID(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doctor.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
