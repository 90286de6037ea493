package scheduling

import "fmt"

// Kind classifies a rejected scheduling request.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindSelfBooking        Kind = "self_booking"
	KindProviderNotFound   Kind = "provider_not_found"
	KindPastDate           Kind = "past_date"
	KindSlotUnavailable    Kind = "slot_unavailable"
	KindUnauthorized       Kind = "unauthorized"
	KindCancellationWindow Kind = "cancellation_window"
	KindAlreadyCanceled    Kind = "already_canceled"
	KindNotFound           Kind = "not_found"
)

// Error is a terminal, caller-visible rejection. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so wrapped rejections still compare
// equal to the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "Validation fails."}
	ErrSelfBooking        = &Error{Kind: KindSelfBooking, Message: "You can't book an appointment with yourself."}
	ErrProviderNotFound   = &Error{Kind: KindProviderNotFound, Message: "You can only create appointments with providers."}
	ErrPastDate           = &Error{Kind: KindPastDate, Message: "Past dates are not permitted."}
	ErrSlotUnavailable    = &Error{Kind: KindSlotUnavailable, Message: "Appointment date is not available."}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, Message: "Unauthorized to access this resource."}
	ErrCancellationWindow = &Error{Kind: KindCancellationWindow, Message: "You can only cancel appointments 2 hours in advance."}
	ErrAlreadyCanceled    = &Error{Kind: KindAlreadyCanceled, Message: "Appointment is already canceled."}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "Appointment not found."}
)

func invalid(cause error) error {
	return &Error{Kind: KindValidation, Message: ErrValidation.Message, Err: cause}
}
