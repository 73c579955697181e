package game

import "fmt"

// RejectCode classifies why a submission was refused. Rejections are
// delivered only to the offending client and never mutate shared state.
type RejectCode string

const (
	RejectNotYourTurn       RejectCode = "NotYourTurn"
	RejectInvalidTarget     RejectCode = "InvalidTarget"
	RejectWindowClosed      RejectCode = "WindowClosed"
	RejectUnknownActionType RejectCode = "UnknownActionType"
	RejectInsufficientCoins RejectCode = "InsufficientCoins"
	RejectMustCoup          RejectCode = "MustCoup"
	RejectNotInProgress     RejectCode = "NotInProgress"
	RejectInvalidCounter    RejectCode = "InvalidCounter"
	RejectInvalidExchange   RejectCode = "InvalidExchange"
)

// Rejection is the error type for illegal game submissions.
type Rejection struct {
	Code   RejectCode
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Reason)
}

func reject(code RejectCode, format string, args ...any) *Rejection {
	return &Rejection{Code: code, Reason: fmt.Sprintf(format, args...)}
}
