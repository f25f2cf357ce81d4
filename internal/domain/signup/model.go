package signup

import "time"

// AttemptState is one node of the signup state machine.
type AttemptState string

const (
	StateSubmitted           AttemptState = "submitted"
	StateBotCheckPending     AttemptState = "bot_check_pending"
	StateBotCheckPassed      AttemptState = "bot_check_passed"
	StateBotCheckFailed      AttemptState = "bot_check_failed"
	StateIdentityPending     AttemptState = "identity_create_pending"
	StateIdentityCreated     AttemptState = "identity_created"
	StateIdentityFailed      AttemptState = "identity_create_failed"
	StateProfileBootstrapped AttemptState = "profile_bootstrapped"
)

// Attempt is the audit record of one signup try. Terminal failures keep the
// state they failed in; the record is never reused across retries.
type Attempt struct {
	ID           string
	Email        string
	Method       string
	State        AttemptState
	UserID       string
	ErrorMessage string
	OccurredAt   time.Time
}

const (
	MethodEmail = "email"
	MethodOAuth = "oauth"
)
