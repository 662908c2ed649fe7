// Package repository holds the read-only player dataset.
package repository

import (
	"context"

	"github.com/okian/lookalike/internal/domain/model"
)

// Store provides read access to the loaded dataset and an explicit reload.
type Store interface {
	// Get returns the first record loaded under name.
	// Returns ErrNotFound if no record carries that name.
	Get(ctx context.Context, name string) (model.Player, error)

	// All returns every record in load order. The slice is a shared snapshot;
	// callers must not modify it.
	All(ctx context.Context) []model.Player

	// Count returns the number of records.
	Count(ctx context.Context) int

	// Names returns the distinct player names in load order.
	Names(ctx context.Context) []string

	// Leagues returns the distinct leagues sorted alphabetically.
	Leagues(ctx context.Context) []string

	// Version increases on every successful Replace.
	Version() uint64

	// Replace validates players and swaps them in as the new snapshot.
	// On error the previous snapshot stays in place.
	Replace(ctx context.Context, players []model.Player) error
}
