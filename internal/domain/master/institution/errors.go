package institution

import "errors"

var ErrInstitutionNotFound = errors.New("institution not found")
