package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation")
	ErrConflict   = errors.New("conflict")

	ErrNoOptionGroups = fmt.Errorf("%w: define option groups for this design before adding variants", ErrValidation)
)
