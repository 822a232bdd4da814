// Package natsutil classifies NATS errors for the balancer execution core.
package natsutil

import (
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// IsTransient reports whether an error is caused by a transient NATS
// condition: timeouts, reconnects, missing stream responses and similar
// connectivity hiccups.
//
// The natsadmin adapter wraps such errors with types.Retriable so the
// convergence waiter absorbs them as "not yet converged" observations instead
// of failing the wait.
//
// Kept in internal/natsutil to avoid importing NATS dependencies in the types
// package.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if error indicates a transient condition
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}
