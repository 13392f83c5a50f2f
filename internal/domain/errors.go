package domain

import "errors"

// Domain sentinel errors. Outside strict mode only ErrDuplicateTemplate
// escapes the core.
var (
	ErrMalformedProductTypeID = errors.New("malformed product type id")
	ErrMultipleDefaults       = errors.New("single-select template has more than one default option")
	ErrUnknownTemplate        = errors.New("unknown variant template")
	ErrUnknownOption          = errors.New("unknown variant option")
	ErrDuplicateOption        = errors.New("duplicate variant option value")
	ErrDuplicateTemplate      = errors.New("variant template selected more than once")
)
