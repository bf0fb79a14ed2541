package migrations

import "context"

func init() {
	Migrations.MustRegister(bunStep(initialSchemaUp), bunStep(initialSchemaDown))
}

// Migration: 20171128000000_initial_schema
func initialSchemaUp(ctx context.Context, db execer) error {
	return execAll(ctx, db, "create store tables",
		`CREATE TABLE IF NOT EXISTS membership_types (
			id TINYINT UNSIGNED NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			sign_up_fee SMALLINT UNSIGNED NOT NULL,
			duration_in_months TINYINT UNSIGNED NOT NULL,
			discount_rate TINYINT UNSIGNED NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS customers (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			is_subscribed_to_newsletter TINYINT(1) NOT NULL DEFAULT 0,
			membership_type_id TINYINT UNSIGNED NOT NULL,
			birthdate DATE NULL,
			CONSTRAINT fk_customers_membership_type FOREIGN KEY (membership_type_id) REFERENCES membership_types (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS genres (
			id TINYINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			UNIQUE KEY uq_genres_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS movies (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			genre_id TINYINT UNSIGNED NOT NULL,
			date_added DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			release_date DATETIME NOT NULL,
			number_in_stock TINYINT UNSIGNED NOT NULL,
			number_available TINYINT UNSIGNED NOT NULL,
			KEY idx_movies_genre (genre_id),
			CONSTRAINT fk_movies_genre FOREIGN KEY (genre_id) REFERENCES genres (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	)
}

func initialSchemaDown(ctx context.Context, db execer) error {
	return execAll(ctx, db, "drop store tables",
		`DROP TABLE IF EXISTS movies`,
		`DROP TABLE IF EXISTS genres`,
		`DROP TABLE IF EXISTS customers`,
		`DROP TABLE IF EXISTS membership_types`,
	)
}
