package notification

import "errors"

var (
	ErrRecipientRequired = errors.New("notification recipient is required")
	ErrServiceStopped    = errors.New("notification service is stopped")
)
