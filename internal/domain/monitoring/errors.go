package monitoring

import "fmt"

// BootstrapError is fatal to startup: monitoring cannot run with a partially
// built checker set.
type BootstrapError struct {
	Target string
	Err    error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap %s: %v", e.Target, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// AuthError aborts the current run only.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("log in: %v", e.Err) }

func (e *AuthError) Unwrap() error { return e.Err }

// SubscriptionError means the telemetry subscription could not be
// established or acknowledged.
type SubscriptionError struct {
	Err error
}

func (e *SubscriptionError) Error() string { return fmt.Sprintf("subscribe: %v", e.Err) }

func (e *SubscriptionError) Unwrap() error { return e.Err }

// CheckError is one target's probe failure; it aborts the remaining checks
// of the run.
type CheckError struct {
	Transport string
	DeviceID  string
	Err       error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check %s device %s: %v", e.Transport, e.DeviceID, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }
