package contract

import "errors"

var (
	ErrModelInvoke        = errors.New("model invoke failed")
	ErrSchemaViolation    = errors.New("model response violates schema")
	ErrValidation         = errors.New("validation failed")
	ErrCatalogUnavailable = errors.New("provider catalog unavailable")
	ErrNotFound           = errors.New("record not found")
)
