package request

type SignUpRequest struct {
	Name     string `json:"name,omitempty" validate:"max=100"`
	Email    string `json:"email,omitempty" validate:"required,email,max=255"`
	Password string `json:"password,omitempty" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email,omitempty" validate:"required,email,max=255"`
	Password string `json:"password,omitempty" validate:"required,min=6,max=72"`
}

// TaskRequest is the only shape read from a task request body. Any other key
// (id, owner, created_at, ...) is dropped by the decoder.
type TaskRequest struct {
	Name      *string `json:"name"`
	Completed *bool   `json:"completed"`
}
