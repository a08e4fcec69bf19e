// Package testutil provides fixtures shared by turbocache tests: real git
// repositories in temp directories and mock errors for fake SDK clients.
//
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors returned by fakes to simulate backend failures.
var (
	// ErrMockAPIError simulates a cloud SDK call failing with a service error.
	ErrMockAPIError = errors.New("API error")

	// ErrMockNetwork simulates a transport failure.
	ErrMockNetwork = errors.New("network error")
)
