package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ArmaniKE/clinic-back/internal/model"
)

// UserRepo provides access to the users table. Registration, login and the
// admin user directory all go through this type; role profile rows are
// handled by DoctorRepo and PatientRepo.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// ErrEmailExists is returned by Create when the email column's unique
// constraint rejects the insert.
var ErrEmailExists = errors.New("email already exists")

// Create inserts a user with the given bcrypt hash and returns its ID.
// Emails are normalized to lower case so the unique index catches
// case-variant duplicates.
func (r *UserRepo) Create(ctx context.Context, fullName, email, passwordHash string, phone *string, role string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (full_name, email, password, phone, role) VALUES (?,?,?,?,?)",
		fullName, email, passwordHash, phone, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,full_name,email,password,phone,role,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,full_name,email,password,phone,role,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns every user ordered by display name, for the admin
// directory. Password hashes are not selected.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,full_name,email,phone,role FROM users ORDER BY full_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update overwrites the editable user columns and returns the fresh row.
// sql.ErrNoRows is returned when the id does not resolve. Duplicate emails
// surface as ErrEmailExists.
func (r *UserRepo) Update(ctx context.Context, id uint64, fullName, email string, phone *string) (model.User, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.User{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=?, email=?, phone=? WHERE id=?",
		fullName, email, phone, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// MergeProfile updates only the supplied users columns, keeping the
// existing value for any nil field. It backs the patient self-service
// profile endpoint.
func (r *UserRepo) MergeProfile(ctx context.Context, id uint64, fullName, phone *string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=COALESCE(?, full_name), phone=COALESCE(?, phone) WHERE id=?",
		fullName, phone, id)
	if err != nil {
		return err
	}
	// A no-op merge still matches the row; only a missing id yields zero
	// matched rows. clientFoundRows is not set on the pool, so fall back to
	// an existence probe when nothing was affected.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
