// Package dao provides data access objects for use in the RPAL server. The
// only persisted entity is the Run: one stored interpretation of an RPAL
// program together with its captured output.
package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store holds all the repositories.
type Store interface {
	Runs() RunRepository
	Close() error
}

// RunRepository persists completed interpretations.
type RunRepository interface {
	// Create stores a new Run. The ID and Created fields of the passed-in
	// Run are ignored; the repository assigns fresh ones and returns the
	// stored record.
	Create(ctx context.Context, run Run) (Run, error)

	GetByID(ctx context.Context, id uuid.UUID) (Run, error)

	// GetAll retrieves all Runs, ordered from most recently created to
	// least.
	GetAll(ctx context.Context) ([]Run, error)

	Delete(ctx context.Context, id uuid.UUID) (Run, error)

	Close() error
}

// Run is one stored interpretation of an RPAL program.
type Run struct {
	ID      uuid.UUID
	Created time.Time

	// Code is the source text that was interpreted.
	Code string

	// Output is everything the program printed.
	Output string

	// Result is the human-readable form of the final value, if the run
	// completed.
	Result string

	// Error is the interpretation error message, if the run failed.
	Error string
}
