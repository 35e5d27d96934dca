package schedule

import "errors"

var ErrTeachingSlotNotFound = errors.New("teaching slot not found")
