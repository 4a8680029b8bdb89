package model

// Doctor is the 1:1 role profile extending a User with role=doctor, as
// stored in the `doctors` table. Appointments reference doctors by the
// owning user's id (doctors.user_id), not by the profile's own id, so
// updates and deletes are keyed by UserID throughout the repository layer.
//
// Fields:
//
//	ID             – primary key identifier of the profile row.
//	UserID         – owning user (users.id), unique.
//	Specialization – medical specialization shown in the directory.
//	Room           – consulting room label.
//	Notes          – free-text administrative notes.
type Doctor struct {
	ID             uint64  // doctors.id
	UserID         uint64  // doctors.user_id
	Specialization *string // doctors.specialization (nullable)
	Room           *string // doctors.room (nullable)
	Notes          *string // doctors.notes (nullable)
}
