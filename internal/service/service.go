// Package service orchestrates lifecycle rules, authorization policies
// and storage. Services own the multi-step flows (invitation
// acceptance, WSJF tally, the doctor pass); single-row CRUD mostly
// passes through to storage, which enforces tenant scoping on its own.
package service

import (
	"errors"

	"github.com/planvote/planvote/internal/storage"
)

// ErrPermissionDenied is returned when a policy check fails before any
// storage call is made.
var ErrPermissionDenied = errors.New("permission denied")

// Service bundles the entity operations behind one constructor so the
// CLI wires a single value.
type Service struct {
	store storage.Storage
}

// New creates a Service on top of a storage backend. Pass the
// telemetry-wrapped store to get spans per operation.
func New(store storage.Storage) *Service {
	return &Service{store: store}
}

// Store exposes the underlying storage for callers that need raw
// access, such as the doctor command's direct statistics read.
func (s *Service) Store() storage.Storage {
	return s.store
}
