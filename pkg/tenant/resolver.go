package tenant

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Default headers read by HeaderResolver.
const (
	DefaultIDHeader    = "X-Tenant-ID"
	DefaultEmailHeader = "X-Tenant-Email"
)

// Resolver extracts the tenant from an HTTP request.
type Resolver interface {
	// Resolve returns nil without error when the request carries no tenant.
	Resolve(r *http.Request) (*Tenant, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(r *http.Request) (*Tenant, error)

func (f ResolverFunc) Resolve(r *http.Request) (*Tenant, error) { return f(r) }

// HeaderResolver reads the tenant ID and email from request headers.
// Authentication sits in front of this service and sets them.
type HeaderResolver struct {
	IDHeader    string
	EmailHeader string
}

// NewHeaderResolver creates a resolver reading the default headers.
func NewHeaderResolver() *HeaderResolver {
	return &HeaderResolver{IDHeader: DefaultIDHeader, EmailHeader: DefaultEmailHeader}
}

// Resolve parses the ID header as a UUID. A missing header yields no tenant;
// a malformed or nil UUID is ErrInvalidIdentifier.
func (r *HeaderResolver) Resolve(req *http.Request) (*Tenant, error) {
	raw := strings.TrimSpace(req.Header.Get(r.IDHeader))
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return nil, ErrInvalidIdentifier
	}

	return &Tenant{
		ID:    id,
		Email: strings.TrimSpace(req.Header.Get(r.EmailHeader)),
	}, nil
}
