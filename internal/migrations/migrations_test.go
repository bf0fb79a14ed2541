package migrations

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsRegisteredInOrder(t *testing.T) {
	sorted := Migrations.Sorted()
	require.Len(t, sorted, 5)

	var names []string
	for _, m := range sorted {
		names = append(names, m.Name+"_"+m.Comment)
	}
	assert.Equal(t, []string{
		"20171128000000_initial_schema",
		"20171128000100_populate_membership_types",
		"20171202230456_populate_genre_types",
		"20171205151712_make_release_date_nullable",
		"20171210000000_add_rentals_and_users",
	}, names)
}

func TestPopulateGenreTypesUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, name := range []string{"Action", "Romance", "Thriller", "Comedy", "Crime", "Horror", "Western"} {
		mock.ExpectExec(`INSERT INTO genres \(id, name\) VALUES \(\d, '` + name + `'\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, populateGenreTypesUp(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMakeReleaseDateNullable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`ALTER TABLE movies MODIFY COLUMN release_date DATETIME NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, makeReleaseDateNullableUp(context.Background(), db))

	mock.ExpectExec(`UPDATE movies SET release_date = date_added WHERE release_date IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`ALTER TABLE movies MODIFY COLUMN release_date DATETIME NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, makeReleaseDateNullableDown(context.Background(), db))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecAllStopsOnFirstError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectExec(`INSERT INTO membership_types`).WillReturnError(boom)

	err = populateMembershipTypesUp(context.Background(), db)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "seed membership types")
	assert.NoError(t, mock.ExpectationsWereMet())
}
