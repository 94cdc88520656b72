package user

// User represents a user entity in the system.
type User struct {
	ID    string // ID is assigned by the persistence layer and never changes
	Name  string // Name is the full name of the user
	Email string // Email is the contact address of the user
	Age   *int   // Age is optional; nil when unknown
}

// Patch holds the fields supplied by an update. Nil fields are left untouched.
type Patch struct {
	Name  *string
	Email *string
	Age   *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Age == nil
}
