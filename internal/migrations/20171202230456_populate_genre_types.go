package migrations

import "context"

func init() {
	Migrations.MustRegister(bunStep(populateGenreTypesUp), bunStep(noop))
}

// Migration: 20171202230456_populate_genre_types
// Down leaves the rows in place; dropping the genres table in
// initial_schema removes them.
func populateGenreTypesUp(ctx context.Context, db execer) error {
	return execAll(ctx, db, "seed genres",
		`INSERT INTO genres (id, name) VALUES (1, 'Action')`,
		`INSERT INTO genres (id, name) VALUES (2, 'Romance')`,
		`INSERT INTO genres (id, name) VALUES (3, 'Thriller')`,
		`INSERT INTO genres (id, name) VALUES (4, 'Comedy')`,
		`INSERT INTO genres (id, name) VALUES (5, 'Crime')`,
		`INSERT INTO genres (id, name) VALUES (6, 'Horror')`,
		`INSERT INTO genres (id, name) VALUES (7, 'Western')`,
	)
}
