// Package backend wires storage and messaging into the service layer
// based on configuration.
package backend

import (
	"context"

	"fintrack/internal/services"
)

// CleanupFunc releases the resources a backend holds
type CleanupFunc func() error

// Result bundles the constructed services with their cleanup.
type Result struct {
	Services services.Bundle
	Cleanup  CleanupFunc
}

// Factory creates service bundles based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// BackendType selects the storage implementation
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
