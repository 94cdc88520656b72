package user

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name  string `validate:"required,max=100"`
	Email string `validate:"required,email"`
	Age   *int   `validate:"omitnil,gte=0,lte=150"`
}

// UpdateUserRequest represents the request payload for updating an existing user.
// Nil fields are not sent to the repository.
type UpdateUserRequest struct {
	ID    string  `validate:"required"`
	Name  *string `validate:"omitnil,min=1,max=100"`
	Email *string `validate:"omitnil,email"`
	Age   *int    `validate:"omitnil,gte=0,lte=150"`
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID string
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    string
	Name  string
	Email string
	Age   *int
}
