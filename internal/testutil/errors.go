// Package testutil provides testing utilities for CADENCE.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockAgentFailed indicates a mock agent invocation failed.
	ErrMockAgentFailed = errors.New("agent invocation failed")

	// ErrMockGitFailed indicates a mock git command failed.
	ErrMockGitFailed = errors.New("git command failed")

	// ErrMockStoreUnavailable indicates a mock backlog store is unavailable.
	ErrMockStoreUnavailable = errors.New("store unavailable")

	// ErrMockNotFound indicates a mock resource was not found.
	ErrMockNotFound = errors.New("not found")

	// ErrMockIO indicates a mock I/O error occurred.
	ErrMockIO = errors.New("io error")
)
