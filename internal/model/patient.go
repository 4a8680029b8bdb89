package model

import "time"

// Patient is the 1:1 role profile extending a User with role=patient, as
// stored in the `patients` table. It is auto-provisioned at registration
// and upserted by the self-service profile update, so a patient user is
// never left without a profile row.
type Patient struct {
	ID        uint64     // patients.id
	UserID    uint64     // patients.user_id
	BirthDate *time.Time // patients.birth_date (nullable)
	Address   *string    // patients.address (nullable)
}
