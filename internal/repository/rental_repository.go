package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/vidly/internal/model"
)

// RentalRepo records movie checkouts and returns.  Both operations keep
// movies.number_available in step with open rentals inside a single
// transaction.
type RentalRepo struct {
    db *sql.DB
}

func NewRentalRepo(db *sql.DB) *RentalRepo {
    return &RentalRepo{db: db}
}

// Create checks out every movie in req for the customer at time now.  The
// customer must exist (ErrCustomerNotFound), every movie id must exist
// (ErrInvalidMovieIDs) and every movie must have a copy on the shelf
// (ErrMovieUnavailable).  Either all rentals are recorded or none.
func (r *RentalRepo) Create(ctx context.Context, req model.NewRental, now time.Time) (out []*model.Rental, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        }
    }()

    // The customer row stays locked until commit so a concurrent delete
    // waits for the rentals that reference it.
    var customerID uint64
    err = tx.QueryRowContext(ctx, `SELECT id FROM customers WHERE id = ? FOR UPDATE`, req.CustomerID).Scan(&customerID)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrCustomerNotFound
    }
    if err != nil {
        return nil, err
    }

    // Lock the requested movies so concurrent checkouts cannot both take
    // the last copy.
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(req.MovieIDs)), ",")
    args := make([]any, len(req.MovieIDs))
    for i, id := range req.MovieIDs {
        args[i] = id
    }
    rows, err := tx.QueryContext(ctx,
        `SELECT id, number_available FROM movies WHERE id IN (`+placeholders+`) FOR UPDATE`, args...)
    if err != nil {
        return nil, err
    }
    available := make(map[uint64]uint8, len(req.MovieIDs))
    for rows.Next() {
        var (
            id uint64
            n  uint8
        )
        if err = rows.Scan(&id, &n); err != nil {
            rows.Close()
            return nil, err
        }
        available[id] = n
    }
    rows.Close()
    if err = rows.Err(); err != nil {
        return nil, err
    }
    if len(available) != len(req.MovieIDs) {
        return nil, ErrInvalidMovieIDs
    }
    for _, id := range req.MovieIDs {
        if available[id] == 0 {
            return nil, ErrMovieUnavailable
        }
    }

    rentedAt := now.UTC().Truncate(time.Second)
    for _, movieID := range req.MovieIDs {
        if _, err = tx.ExecContext(ctx,
            `UPDATE movies SET number_available = number_available - 1 WHERE id = ?`, movieID); err != nil {
            return nil, err
        }
        var res sql.Result
        res, err = tx.ExecContext(ctx,
            `INSERT INTO rentals (customer_id, movie_id, date_rented) VALUES (?, ?, ?)`,
            req.CustomerID, movieID, rentedAt)
        if err != nil {
            if mysqlErrno(err) == errNoReferencedRow {
                err = ErrCustomerNotFound
            }
            return nil, err
        }
        var id int64
        if id, err = res.LastInsertId(); err != nil {
            return nil, err
        }
        out = append(out, &model.Rental{
            ID:         uint64(id),
            CustomerID: req.CustomerID,
            MovieID:    movieID,
            DateRented: rentedAt,
        })
    }
    if err = tx.Commit(); err != nil {
        return nil, err
    }
    return out, nil
}

// Return closes an open rental at time now and puts the copy back on the
// shelf.  Returning a closed rental yields ErrAlreadyReturned.
func (r *RentalRepo) Return(ctx context.Context, id uint64, now time.Time) (rental *model.Rental, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        }
    }()

    rental, err = scanRental(tx.QueryRowContext(ctx,
        `SELECT id, customer_id, movie_id, date_rented, date_returned FROM rentals WHERE id = ? FOR UPDATE`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrRentalNotFound
    }
    if err != nil {
        return nil, err
    }
    if rental.DateReturned != nil {
        return nil, ErrAlreadyReturned
    }

    returnedAt := now.UTC().Truncate(time.Second)
    if _, err = tx.ExecContext(ctx, `UPDATE rentals SET date_returned = ? WHERE id = ?`, returnedAt, id); err != nil {
        return nil, err
    }
    if _, err = tx.ExecContext(ctx,
        `UPDATE movies SET number_available = number_available + 1 WHERE id = ?`, rental.MovieID); err != nil {
        return nil, err
    }
    if err = tx.Commit(); err != nil {
        return nil, err
    }
    rental.DateReturned = &returnedAt
    return rental, nil
}

// ListByCustomer returns a customer's rentals, most recent first.
func (r *RentalRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]*model.Rental, error) {
    const q = `SELECT id, customer_id, movie_id, date_rented, date_returned
               FROM rentals WHERE customer_id = ? ORDER BY date_rented DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, customerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []*model.Rental{}
    for rows.Next() {
        rt, err := scanRental(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, rt)
    }
    return out, rows.Err()
}

func scanRental(s rowScanner) (*model.Rental, error) {
    var (
        rt       model.Rental
        returned sql.NullTime
    )
    if err := s.Scan(&rt.ID, &rt.CustomerID, &rt.MovieID, &rt.DateRented, &returned); err != nil {
        return nil, err
    }
    if returned.Valid {
        t := returned.Time
        rt.DateReturned = &t
    }
    return &rt, nil
}
