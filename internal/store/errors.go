package store

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrDuplicateFingerprint = errors.New("transaction fingerprint already stored")
	ErrNestedTx             = errors.New("store is already in a transaction")
)
