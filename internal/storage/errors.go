// Package storage holds what the store implementations share.
package storage

import "errors"

// ErrNotFound is wrapped by store errors for missing records.
var ErrNotFound = errors.New("not found")
