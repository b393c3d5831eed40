package remitter

import (
	"errors"

	"github.com/Azahorscak/remitter-tui/internal/errs"
)

// Status banner texts.
const (
	StatusSaved        = "Bank details saved successfully!"
	StatusLoadFailed   = "Error loading bank details"
	StatusReauth       = "Authentication required. Please log in again."
	StatusAccessDenied = "Access denied. Please check your permissions."
	StatusSaveFailed   = "Error saving bank details. Please try again."
)

// StatusKind selects how the status banner is rendered.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusSuccess
	StatusError
)

// Mode is the form's position in the view/edit state machine.
type Mode int

const (
	ModeLoading Mode = iota
	ModeViewing
	ModeEditingNew
	ModeEditingExisting
	ModeSubmitting
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeViewing:
		return "viewing"
	case ModeEditingNew:
		return "editing-new"
	case ModeEditingExisting:
		return "editing-existing"
	case ModeSubmitting:
		return "submitting"
	}
	return "unknown"
}

// State is the client-side shadow of the server record plus form flags.
type State struct {
	Profile Profile
	// Stored is the last profile the server confirmed. Cancel restores it.
	Stored     Profile
	Exists     bool
	Editing    bool
	Submitting bool
	Loading    bool
	Status     string
	StatusKind StatusKind
	// Missing lists required fields that blocked the last submit attempt.
	Missing []Field
	// ReadOnly disables edit mode entirely, including create mode.
	ReadOnly bool
}

// NewState returns the state of a freshly mounted form, awaiting its first load.
func NewState() State {
	return State{Loading: true}
}

// Mode derives the current state-machine position.
func (s State) Mode() Mode {
	switch {
	case s.Submitting:
		return ModeSubmitting
	case s.Editing && s.Exists:
		return ModeEditingExisting
	case s.Editing:
		return ModeEditingNew
	case s.Loading:
		return ModeLoading
	default:
		return ModeViewing
	}
}

// IsMissing reports whether f blocked the last submit attempt.
func (s State) IsMissing(f Field) bool {
	for _, m := range s.Missing {
		if m == f {
			return true
		}
	}
	return false
}

// Outcome is the result of loading the current user's profile.
// The set of implementations is closed: Found, NotFound, Unauthorized, Failed.
type Outcome interface {
	outcome()
}

// Found carries a successfully decoded profile.
type Found struct {
	Profile Profile
}

// NotFound means the user has no stored record, or the server returned no object.
type NotFound struct{}

// Unauthorized means the session is no longer valid.
type Unauthorized struct{}

// Failed covers every other load error.
type Failed struct {
	Err error
}

func (Found) outcome()        {}
func (NotFound) outcome()     {}
func (Unauthorized) outcome() {}
func (Failed) outcome()       {}

// Classify maps the result of a profile fetch onto an Outcome.
func Classify(p Profile, err error) Outcome {
	if err == nil {
		return Found{Profile: p}
	}

	var notFound *errs.NotFoundError
	var decode *errs.DecodeError
	var unauthorized *errs.UnauthorizedError
	switch {
	case errors.As(err, &notFound), errors.As(err, &decode):
		return NotFound{}
	case errors.As(err, &unauthorized):
		return Unauthorized{}
	default:
		return Failed{Err: err}
	}
}

// SubmitResult maps the result of a create or update call onto an Event.
// A successful response whose body is not a remitter object still counts as
// saved; the form then keeps its local values.
func SubmitResult(p Profile, err error) Event {
	if err == nil {
		return SubmitSucceeded{Profile: p, Decoded: true}
	}
	var decode *errs.DecodeError
	if errors.As(err, &decode) {
		return SubmitSucceeded{}
	}
	return SubmitFailed{Err: err}
}

// SubmitStatus returns the banner text for a failed save.
// Server detail wins over the status-code based messages.
func SubmitStatus(err error) string {
	if d := errs.Detail(err); d != "" {
		return d
	}

	var unauthorized *errs.UnauthorizedError
	var forbidden *errs.ForbiddenError
	switch {
	case errors.As(err, &unauthorized):
		return StatusReauth
	case errors.As(err, &forbidden):
		return StatusAccessDenied
	default:
		return StatusSaveFailed
	}
}
