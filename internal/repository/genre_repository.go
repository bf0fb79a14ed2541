package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/vidly/internal/model"
)

// GenreRepo reads and extends the genre lookup table.
type GenreRepo struct {
    db *sql.DB
}

func NewGenreRepo(db *sql.DB) *GenreRepo {
    return &GenreRepo{db: db}
}

// List returns all genres ordered by id.
func (r *GenreRepo) List(ctx context.Context) ([]*model.Genre, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []*model.Genre{}
    for rows.Next() {
        g := new(model.Genre)
        if err := rows.Scan(&g.ID, &g.Name); err != nil {
            return nil, err
        }
        out = append(out, g)
    }
    return out, rows.Err()
}

// Create inserts a genre and fills in its id.  A duplicate name yields
// ErrConflict.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
    res, err := r.db.ExecContext(ctx, `INSERT INTO genres (name) VALUES (?)`, g.Name)
    if err != nil {
        if mysqlErrno(err) == errDupEntry {
            return ErrConflict
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    g.ID = uint8(id)
    return nil
}
