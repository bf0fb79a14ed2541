package migrations

import "context"

func init() {
	Migrations.MustRegister(bunStep(populateMembershipTypesUp), bunStep(populateMembershipTypesDown))
}

// Migration: 20171128000100_populate_membership_types
func populateMembershipTypesUp(ctx context.Context, db execer) error {
	return execAll(ctx, db, "seed membership types",
		`INSERT INTO membership_types (id, name, sign_up_fee, duration_in_months, discount_rate) VALUES (1, 'Pay as You Go', 0, 0, 0)`,
		`INSERT INTO membership_types (id, name, sign_up_fee, duration_in_months, discount_rate) VALUES (2, 'Monthly', 30, 1, 10)`,
		`INSERT INTO membership_types (id, name, sign_up_fee, duration_in_months, discount_rate) VALUES (3, 'Quarterly', 90, 3, 15)`,
		`INSERT INTO membership_types (id, name, sign_up_fee, duration_in_months, discount_rate) VALUES (4, 'Yearly', 300, 12, 20)`,
	)
}

func populateMembershipTypesDown(ctx context.Context, db execer) error {
	return execAll(ctx, db, "remove membership types",
		`DELETE FROM membership_types WHERE id IN (1, 2, 3, 4)`,
	)
}
