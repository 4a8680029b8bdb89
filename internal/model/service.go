package model

// Service is a billable offering from the `services` table. A service
// cannot be deleted while any appointment references it, regardless of the
// appointment's status; the repository enforces that guard explicitly.
type Service struct {
	ID    uint64  // services.id
	Name  string  // services.name
	Price float64 // services.price
}
