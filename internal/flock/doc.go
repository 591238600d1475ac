// Package flock provides cross-platform file locking utilities.
//
// The backlog store serializes access to feature_list.json with an
// exclusive lock so concurrent CLI invocations against the same project
// cannot interleave read-modify-write cycles. Locks are non-blocking; the
// caller owns the retry loop and its timeout.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - file is in use
//	}
//	defer flock.Unlock(file.Fd())
package flock
