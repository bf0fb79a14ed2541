package migrations

import "context"

func init() {
	Migrations.MustRegister(bunStep(addRentalsAndUsersUp), bunStep(addRentalsAndUsersDown))
}

// Migration: 20171210000000_add_rentals_and_users
func addRentalsAndUsersUp(ctx context.Context, db execer) error {
	return execAll(ctx, db, "create rentals and staff tables",
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT 'STAFF',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			token_hash CHAR(64) NOT NULL,
			expires_at DATETIME NOT NULL,
			revoked_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_refresh_tokens_hash (token_hash),
			CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS rentals (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			customer_id BIGINT UNSIGNED NOT NULL,
			movie_id BIGINT UNSIGNED NOT NULL,
			date_rented DATETIME NOT NULL,
			date_returned DATETIME NULL,
			KEY idx_rentals_customer (customer_id),
			KEY idx_rentals_movie_open (movie_id, date_returned),
			CONSTRAINT fk_rentals_customer FOREIGN KEY (customer_id) REFERENCES customers (id),
			CONSTRAINT fk_rentals_movie FOREIGN KEY (movie_id) REFERENCES movies (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	)
}

func addRentalsAndUsersDown(ctx context.Context, db execer) error {
	return execAll(ctx, db, "drop rentals and staff tables",
		`DROP TABLE IF EXISTS rentals`,
		`DROP TABLE IF EXISTS refresh_tokens`,
		`DROP TABLE IF EXISTS users`,
	)
}
