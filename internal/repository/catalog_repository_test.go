package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCatalogRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	shiftRows := sqlmock.NewRows([]string{"id", "name", "start_time", "end_time"}).
		AddRow("morning", "Morning", "08:00:00", "12:00:00").
		AddRow("evening", "Evening", "14:00:00", "20:00:00")
	mock.ExpectQuery(regexp.QuoteMeta("FROM shift_templates")).WillReturnRows(shiftRows)

	typeRows := sqlmock.NewRows([]string{"id", "name", "color"}).
		AddRow("consult", "Consultation", "#2d8cf0")
	mock.ExpectQuery(regexp.QuoteMeta("FROM event_type_categories")).WillReturnRows(typeRows)

	catalog, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Shifts, 2)
	assert.Equal(t, 8*60, catalog.Shifts[0].Start)
	assert.Equal(t, 12*60, catalog.Shifts[0].End)
	require.Len(t, catalog.EventTypes, 1)
	assert.Equal(t, "#2d8cf0", catalog.EventTypes[0].Color)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryLoadWidensMalformedBounds(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	shiftRows := sqlmock.NewRows([]string{"id", "name", "start_time", "end_time"}).
		AddRow("broken", "Broken", "not-a-time", "huh")
	mock.ExpectQuery(regexp.QuoteMeta("FROM shift_templates")).WillReturnRows(shiftRows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM event_type_categories")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color"}))

	catalog, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Shifts, 1)
	// A broken bound stops constraining rather than blocking scheduling.
	assert.Equal(t, 0, catalog.Shifts[0].Start)
	assert.Equal(t, 24*60, catalog.Shifts[0].End)
}

func TestCatalogRepositoryLoadPropagatesQueryError(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM shift_templates")).WillReturnError(assert.AnError)

	_, err := repo.Load(context.Background())
	require.Error(t, err)
}
