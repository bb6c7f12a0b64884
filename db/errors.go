package db

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateEntry   = errors.New("record already exists for this student and month")
	ErrDuplicateReceipt = errors.New("receipt number already exists")
	ErrNoData           = errors.New("no data")
	ErrMissingFields    = errors.New("missing required fields")
)
