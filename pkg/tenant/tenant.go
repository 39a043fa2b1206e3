package tenant

import "github.com/google/uuid"

// Tenant is the request-scoped identity every billing operation runs for.
// It is resolved once per request and passed down explicitly through the context.
type Tenant struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
}
