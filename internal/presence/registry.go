// Package presence tracks which display names are currently claimed.
package presence

import (
	"context"
	"errors"

	"golang.org/x/text/cases"
)

// ErrEmptyName is returned when an empty name is offered for a claim
var ErrEmptyName = errors.New("presence: empty name")

// Registry is the ordered set of names currently online.
//
// Names are stored as given and compared case-insensitively for uniqueness;
// the reserved system name can never be claimed.
type Registry interface {
	// TryClaim inserts name unless a fold-equal member or the reserved name exists
	TryClaim(ctx context.Context, name string) (bool, error)
	// Release removes the exact name; an absent name is not an error
	Release(ctx context.Context, name string) error
	// Snapshot returns members in claim order, never nil
	Snapshot(ctx context.Context) ([]string, error)
	// Contains reports exact, case-sensitive membership
	Contains(ctx context.Context, name string) (bool, error)
	// Close releases backend resources
	Close() error
}

// fold returns the comparison key for a name. A fresh Caser is used per call
// because casers carry state.
func fold(name string) string {
	return cases.Fold().String(name)
}
