package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/vidly/internal/model"
)

// MembershipTypeRepo exposes the seeded membership plans.
type MembershipTypeRepo struct {
    db *sql.DB
}

func NewMembershipTypeRepo(db *sql.DB) *MembershipTypeRepo {
    return &MembershipTypeRepo{db: db}
}

// List returns every membership type ordered by id.
func (r *MembershipTypeRepo) List(ctx context.Context) ([]*model.MembershipType, error) {
    const q = `SELECT id, name, sign_up_fee, duration_in_months, discount_rate
               FROM membership_types ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []*model.MembershipType{}
    for rows.Next() {
        mt := new(model.MembershipType)
        if err := rows.Scan(&mt.ID, &mt.Name, &mt.SignUpFee, &mt.DurationInMonths, &mt.DiscountRate); err != nil {
            return nil, err
        }
        out = append(out, mt)
    }
    return out, rows.Err()
}
