package migrations

import "context"

func init() {
	Migrations.MustRegister(bunStep(makeReleaseDateNullableUp), bunStep(makeReleaseDateNullableDown))
}

// Migration: 20171205151712_make_release_date_nullable
func makeReleaseDateNullableUp(ctx context.Context, db execer) error {
	return execAll(ctx, db, "make movies.release_date nullable",
		`ALTER TABLE movies MODIFY COLUMN release_date DATETIME NULL`,
	)
}

// Rows without a release date are backfilled from date_added so the NOT
// NULL constraint can be restored.
func makeReleaseDateNullableDown(ctx context.Context, db execer) error {
	return execAll(ctx, db, "make movies.release_date required",
		`UPDATE movies SET release_date = date_added WHERE release_date IS NULL`,
		`ALTER TABLE movies MODIFY COLUMN release_date DATETIME NOT NULL`,
	)
}
