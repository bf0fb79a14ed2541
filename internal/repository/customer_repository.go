package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/vidly/internal/model"
)

// CustomerRepo encapsulates all database queries related to customers.
// Records reaching Create or Update are expected to have passed
// validation.CustomerValidator; the repository only enforces what the
// schema enforces (foreign keys, existence).
type CustomerRepo struct {
    db *sql.DB
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo {
    return &CustomerRepo{db: db}
}

const customerColumns = `id, name, is_subscribed_to_newsletter, membership_type_id, birthdate`

type rowScanner interface {
    Scan(dest ...any) error
}

func scanCustomer(s rowScanner) (*model.Customer, error) {
    var (
        c  model.Customer
        bd sql.NullTime
    )
    if err := s.Scan(&c.ID, &c.Name, &c.IsSubscribedToNewsletter, &c.MembershipTypeID, &bd); err != nil {
        return nil, err
    }
    if bd.Valid {
        t := bd.Time
        c.Birthdate = &t
    }
    return &c, nil
}

// nullDate converts an optional date into a DATE column value.
func nullDate(t *time.Time) sql.NullTime {
    if t == nil {
        return sql.NullTime{}
    }
    y, m, d := t.Date()
    return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// List returns all customers ordered by name.
func (r *CustomerRepo) List(ctx context.Context) ([]*model.Customer, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name, id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []*model.Customer{}
    for rows.Next() {
        c, err := scanCustomer(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    return out, rows.Err()
}

// GetByID fetches a customer or returns ErrCustomerNotFound.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
    c, err := scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrCustomerNotFound
    }
    return c, err
}

// Create inserts a new customer and populates its ID.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
    const q = `INSERT INTO customers (name, is_subscribed_to_newsletter, membership_type_id, birthdate)
               VALUES (?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, c.Name, c.IsSubscribedToNewsletter, c.MembershipTypeID, nullDate(c.Birthdate))
    if err != nil {
        if mysqlErrno(err) == errNoReferencedRow {
            return ErrUnknownMembershipType
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    return nil
}

// Update overwrites every editable column of an existing customer.  The
// connection uses clientFoundRows, so an unchanged row still counts as
// affected and zero means the id does not exist.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
    const q = `UPDATE customers
               SET name = ?, is_subscribed_to_newsletter = ?, membership_type_id = ?, birthdate = ?
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, c.Name, c.IsSubscribedToNewsletter, c.MembershipTypeID, nullDate(c.Birthdate), c.ID)
    if err != nil {
        if mysqlErrno(err) == errNoReferencedRow {
            return ErrUnknownMembershipType
        }
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrCustomerNotFound
    }
    return nil
}

// Delete removes a customer.  Customers with rental history cannot be
// deleted and yield ErrConflict.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
    if err != nil {
        if mysqlErrno(err) == errRowIsReferenced {
            return ErrConflict
        }
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrCustomerNotFound
    }
    return nil
}
