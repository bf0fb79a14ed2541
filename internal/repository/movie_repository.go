package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/vidly/internal/model"
)

// MovieRepo encapsulates all database queries related to the movie
// catalogue.  number_available is owned by the rental flow; catalogue
// edits only shift it by the change in number_in_stock.
type MovieRepo struct {
    db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo {
    return &MovieRepo{db: db}
}

const movieSelect = `SELECT m.id, m.name, m.genre_id, g.name, m.date_added, m.release_date,
                            m.number_in_stock, m.number_available
                     FROM movies m JOIN genres g ON g.id = m.genre_id`

func scanMovie(s rowScanner) (*model.Movie, error) {
    var (
        m  model.Movie
        rd sql.NullTime
    )
    if err := s.Scan(&m.ID, &m.Name, &m.GenreID, &m.GenreName, &m.DateAdded, &rd, &m.NumberInStock, &m.NumberAvailable); err != nil {
        return nil, err
    }
    if rd.Valid {
        t := rd.Time
        m.ReleaseDate = &t
    }
    return &m, nil
}

func releaseDate(m *model.Movie) sql.NullTime {
    if m.ReleaseDate == nil {
        return sql.NullTime{}
    }
    return sql.NullTime{Time: m.ReleaseDate.UTC(), Valid: true}
}

// List returns movies ordered by name.  When availableOnly is set, titles
// with no copy on the shelf are skipped.
func (r *MovieRepo) List(ctx context.Context, availableOnly bool) ([]*model.Movie, error) {
    q := movieSelect
    if availableOnly {
        q += ` WHERE m.number_available > 0`
    }
    q += ` ORDER BY m.name, m.id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []*model.Movie{}
    for rows.Next() {
        m, err := scanMovie(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    return out, rows.Err()
}

// GetByID fetches a movie with its genre name or returns ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
    m, err := scanMovie(r.db.QueryRowContext(ctx, movieSelect+` WHERE m.id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrMovieNotFound
    }
    return m, err
}

// Create inserts a movie with every copy available and reloads it so the
// caller gets date_added and the genre name.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
    const q = `INSERT INTO movies (name, genre_id, release_date, number_in_stock, number_available)
               VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, m.Name, m.GenreID, releaseDate(m), m.NumberInStock, m.NumberInStock)
    if err != nil {
        if mysqlErrno(err) == errNoReferencedRow {
            return ErrGenreNotFound
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    created, err := r.GetByID(ctx, uint64(id))
    if err != nil {
        return err
    }
    *m = *created
    return nil
}

// Update changes a movie's catalogue fields.  Reducing number_in_stock
// below the number of copies currently rented out yields ErrConflict.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) (err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        }
    }()

    var stock, available uint8
    err = tx.QueryRowContext(ctx, `SELECT number_in_stock, number_available FROM movies WHERE id = ? FOR UPDATE`, m.ID).
        Scan(&stock, &available)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrMovieNotFound
    }
    if err != nil {
        return err
    }
    rented := int(stock) - int(available)
    if int(m.NumberInStock) < rented {
        return ErrConflict
    }

    const q = `UPDATE movies
               SET name = ?, genre_id = ?, release_date = ?, number_in_stock = ?, number_available = ?
               WHERE id = ?`
    if _, err = tx.ExecContext(ctx, q, m.Name, m.GenreID, releaseDate(m), m.NumberInStock, int(m.NumberInStock)-rented, m.ID); err != nil {
        if mysqlErrno(err) == errNoReferencedRow {
            err = ErrGenreNotFound
        }
        return err
    }
    if err = tx.Commit(); err != nil {
        return err
    }
    updated, err := r.GetByID(ctx, m.ID)
    if err != nil {
        return err
    }
    *m = *updated
    return nil
}

// Delete removes a movie that has never been rented.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
    if err != nil {
        if mysqlErrno(err) == errRowIsReferenced {
            return ErrConflict
        }
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrMovieNotFound
    }
    return nil
}
