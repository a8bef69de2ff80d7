package repository

import "errors"

// ErrDuplicate is returned when a create would violate a uniqueness
// constraint (watchlist symbol already tracked, username/email taken).
var ErrDuplicate = errors.New("record already exists")

// ErrNotFound is returned when a lookup matched nothing.
var ErrNotFound = errors.New("record not found")
