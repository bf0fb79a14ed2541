package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vidly/internal/model"
)

func TestMovieRepo_UpdateRefusesToDropRentedCopies(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMovieRepo(db)

	// 5 in stock, 2 on the shelf: 3 copies are out.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT number_in_stock, number_available FROM movies WHERE id = \? FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"number_in_stock", "number_available"}).AddRow(int64(5), int64(2)))
	mock.ExpectRollback()

	err = repo.Update(context.Background(), &model.Movie{ID: 4, Name: "Heat", GenreID: 5, NumberInStock: 2})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_UpdateShiftsAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMovieRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT number_in_stock, number_available FROM movies`).
		WillReturnRows(sqlmock.NewRows([]string{"number_in_stock", "number_available"}).AddRow(int64(5), int64(2)))
	// 3 rented, new stock 10 -> 7 available.
	mock.ExpectExec(`UPDATE movies`).
		WithArgs("Heat", int64(5), nil, int64(10), int64(7), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM movies m JOIN genres g ON g.id = m.genre_id WHERE m.id = \?`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "genre_id", "genre_name", "date_added", "release_date", "number_in_stock", "number_available"}).
			AddRow(int64(4), "Heat", int64(5), "Crime", rentedAt, nil, int64(10), int64(7)))

	m := &model.Movie{ID: 4, Name: "Heat", GenreID: 5, NumberInStock: 10}
	require.NoError(t, repo.Update(context.Background(), m))
	assert.Equal(t, "Crime", m.GenreName)
	assert.Equal(t, uint8(7), m.NumberAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
