package repositories

import "errors"

// ErrNotFound is returned by updates that matched no row for the tenant.
var ErrNotFound = errors.New("record not found")
