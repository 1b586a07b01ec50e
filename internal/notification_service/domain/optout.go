package domain

import "time"

// OptOutRecord exists once per phone number that asked to stop receiving messages.
type OptOutRecord struct {
	PhoneNumber string
	OptedOut    bool
	OptedOutAt  time.Time
}
