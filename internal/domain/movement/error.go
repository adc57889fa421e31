package movement

import (
	"errors"
	"fmt"
)

var (
	ErrParse               = errors.New("malformed remote response")
	ErrTransport           = errors.New("remote source unavailable")
	ErrValidation          = errors.New("validation failed")
	ErrSubmissionTransport = errors.New("submission transport failed")
)

// Уточнения ErrValidation: errors.Is(err, ErrValidation) выполняется для каждого.
var (
	ErrMissingDocument  = fmt.Errorf("%w: document is required", ErrValidation)
	ErrInvalidDocument  = fmt.Errorf("%w: document must contain digits only", ErrValidation)
	ErrUnknownDocument  = fmt.Errorf("%w: document not found in roster", ErrValidation)
	ErrInvalidType      = fmt.Errorf("%w: invalid movement type", ErrValidation)
	ErrUnknownEquipment = fmt.Errorf("%w: unknown equipment", ErrValidation)
	ErrNotOnLoan        = fmt.Errorf("%w: equipment is not on loan", ErrValidation)
	ErrAlreadyOnLoan    = fmt.Errorf("%w: equipment is already on loan", ErrValidation)
)
