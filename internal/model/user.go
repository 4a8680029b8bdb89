package model

import "time"

// Role values stored in users.role. A profile row in `doctors` or
// `patients` implies a user with the matching role; the reverse does not
// hold, which is why patient self-service writes upsert the profile.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	return s == RolePatient || s == RoleDoctor || s == RoleAdmin
}

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column in the database. The json tags
// are omitted here because these structs are primarily used internally by
// the repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	FullName     – display name, used for ordering directory listings.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Phone        – contact phone number (nullable).
//	Role         – one of patient, doctor, admin.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	FullName     string    // users.full_name
	Email        string    // users.email
	PasswordHash string    // users.password
	Phone        *string   // users.phone (nullable)
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
