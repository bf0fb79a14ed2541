package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vidly/internal/model"
)

var rentedAt = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

func newMock(t *testing.T) (*RentalRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRentalRepo(db), mock
}

func TestRentalRepo_Create(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM customers WHERE id = \? FOR UPDATE`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(`SELECT id, number_available FROM movies WHERE id IN \(\?,\?\) FOR UPDATE`).
		WithArgs(int64(10), int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number_available"}).
			AddRow(int64(10), int64(2)).
			AddRow(int64(11), int64(1)))
	for i, movieID := range []int64{10, 11} {
		mock.ExpectExec(`UPDATE movies SET number_available = number_available - 1 WHERE id = \?`).
			WithArgs(movieID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO rentals \(customer_id, movie_id, date_rented\)`).
			WithArgs(int64(3), movieID, rentedAt).
			WillReturnResult(sqlmock.NewResult(int64(100+i), 1))
	}
	mock.ExpectCommit()

	got, err := repo.Create(context.Background(), model.NewRental{CustomerID: 3, MovieIDs: []uint64{10, 11}}, rentedAt)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(100), got[0].ID)
	assert.Equal(t, uint64(11), got[1].MovieID)
	assert.Equal(t, rentedAt, got[1].DateRented)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepo_CreateRejects(t *testing.T) {
	t.Run("unknown customer", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM customers`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), model.NewRental{CustomerID: 9, MovieIDs: []uint64{1}}, rentedAt)
		assert.ErrorIs(t, err, ErrCustomerNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("customer deleted before insert", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM customers`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectQuery(`SELECT id, number_available FROM movies`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "number_available"}).AddRow(int64(1), int64(4)))
		mock.ExpectExec(`UPDATE movies SET number_available`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO rentals`).
			WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key"})
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), model.NewRental{CustomerID: 1, MovieIDs: []uint64{1}}, rentedAt)
		assert.ErrorIs(t, err, ErrCustomerNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing movie", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM customers`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectQuery(`SELECT id, number_available FROM movies`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "number_available"}).AddRow(int64(1), int64(4)))
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), model.NewRental{CustomerID: 1, MovieIDs: []uint64{1, 2}}, rentedAt)
		assert.ErrorIs(t, err, ErrInvalidMovieIDs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no copy on the shelf", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM customers`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectQuery(`SELECT id, number_available FROM movies`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "number_available"}).
				AddRow(int64(1), int64(4)).
				AddRow(int64(2), int64(0)))
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), model.NewRental{CustomerID: 1, MovieIDs: []uint64{1, 2}}, rentedAt)
		assert.ErrorIs(t, err, ErrMovieUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalRepo_Return(t *testing.T) {
	cols := []string{"id", "customer_id", "movie_id", "date_rented", "date_returned"}
	returnedAt := rentedAt.Add(48 * time.Hour)

	t.Run("open rental", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, customer_id, movie_id, date_rented, date_returned FROM rentals WHERE id = \? FOR UPDATE`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(5), int64(3), int64(10), rentedAt, nil))
		mock.ExpectExec(`UPDATE rentals SET date_returned = \? WHERE id = \?`).
			WithArgs(returnedAt, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE movies SET number_available = number_available \+ 1 WHERE id = \?`).
			WithArgs(int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		got, err := repo.Return(context.Background(), 5, returnedAt)
		require.NoError(t, err)
		require.NotNil(t, got.DateReturned)
		assert.Equal(t, returnedAt, *got.DateReturned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already returned", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, customer_id, movie_id, date_rented, date_returned FROM rentals`).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(5), int64(3), int64(10), rentedAt, returnedAt))
		mock.ExpectRollback()

		_, err := repo.Return(context.Background(), 5, returnedAt)
		assert.ErrorIs(t, err, ErrAlreadyReturned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
