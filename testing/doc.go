// Package testing provides test utilities for the Astraea library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for integration testing. It follows Go's convention
// of providing testing utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//
// Example usage:
//
//	import (
//	    "testing"
//	    astraeatest "github.com/Haser0305/astraea/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := astraeatest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
