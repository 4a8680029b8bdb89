package repository

import (
	"context"
	"database/sql"

	"github.com/ArmaniKE/clinic-back/internal/model"
)

// ServiceRepo provides CRUD over the service catalog. Deletion is guarded:
// a service referenced by any appointment, cancelled or not, cannot be
// removed.
type ServiceRepo struct{ DB *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{DB: db} }

// List returns the catalog ordered by name.
func (r *ServiceRepo) List(ctx context.Context) ([]model.Service, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, price FROM services ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches one service.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, price FROM services WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.Name, &s.Price)
	return s, err
}

// Create inserts a service.
func (r *ServiceRepo) Create(ctx context.Context, name string, price float64) (model.Service, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO services (name, price) VALUES (?,?)", name, price)
	if err != nil {
		return model.Service{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Service{}, err
	}
	return model.Service{ID: uint64(id), Name: name, Price: price}, nil
}

// Update overwrites name and price. sql.ErrNoRows when the id is unknown.
func (r *ServiceRepo) Update(ctx context.Context, id uint64, name string, price float64) (model.Service, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Service{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE services SET name=?, price=? WHERE id=?", name, price, id); err != nil {
		return model.Service{}, err
	}
	return model.Service{ID: id, Name: name, Price: price}, nil
}

// Delete removes a service unless any appointment references it. The
// reference check counts appointments of every status so even cancelled
// bookings keep their service row for history. ErrConflict is returned
// when references exist, sql.ErrNoRows when the id is unknown.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
	var refs int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM appointments WHERE service_id=?", id).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM services WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
