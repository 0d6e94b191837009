package memstore

import "errors"

var (
	// ErrRecordNotFound is returned when updating a record id that does not exist
	ErrRecordNotFound = errors.New("record not found")
	// ErrBatchTooLarge mirrors the hosted store's limit on rows per write
	ErrBatchTooLarge = errors.New("too many records in one request")
)
