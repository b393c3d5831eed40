package remitter

// Event is an input to Reduce.
type Event interface {
	event()
}

// Loaded delivers the outcome of a profile load.
type Loaded struct {
	Outcome Outcome
}

// FieldChanged is a user edit to a single field.
type FieldChanged struct {
	Field Field
	Value string
}

// EditRequested asks to switch the form into edit mode. Without a stored
// record this enters create mode.
type EditRequested struct{}

// CancelRequested asks to discard unsaved edits of a stored record.
type CancelRequested struct{}

// SubmitRequested asks to save the form.
type SubmitRequested struct{}

// SubmitSucceeded carries the server's response to a create or update.
// Decoded is false when the response body was not a remitter object.
type SubmitSucceeded struct {
	Profile Profile
	Decoded bool
}

// SubmitFailed carries the error from a create or update.
type SubmitFailed struct {
	Err error
}

func (Loaded) event()          {}
func (FieldChanged) event()    {}
func (EditRequested) event()   {}
func (CancelRequested) event() {}
func (SubmitRequested) event() {}
func (SubmitSucceeded) event() {}
func (SubmitFailed) event()    {}

// Command is the side effect Reduce asks the caller to perform.
type Command int

const (
	CmdNone Command = iota
	CmdLoad
	CmdCreate
	CmdUpdate
)

func (c Command) String() string {
	switch c {
	case CmdLoad:
		return "load"
	case CmdCreate:
		return "create"
	case CmdUpdate:
		return "update"
	}
	return "none"
}

// Reduce applies e to s and returns the new state together with the side
// effect to run. It never performs I/O; for CmdCreate and CmdUpdate the
// payload is the returned state's Profile.
func Reduce(s State, e Event) (State, Command) {
	switch e := e.(type) {
	case Loaded:
		return reduceLoaded(s, e.Outcome), CmdNone

	case FieldChanged:
		if !s.Editing || s.Submitting || !e.Field.valid() {
			return s, CmdNone
		}
		s.Profile = s.Profile.Set(e.Field, e.Value)
		if e.Value != "" {
			s.Missing = without(s.Missing, e.Field)
		}
		return s, CmdNone

	case EditRequested:
		if s.ReadOnly || s.Editing || s.Submitting || s.Loading {
			return s, CmdNone
		}
		s.Editing = true
		s.Status, s.StatusKind = "", StatusNone
		return s, CmdNone

	case CancelRequested:
		if !s.Editing || !s.Exists || s.Submitting {
			return s, CmdNone
		}
		s.Profile = s.Stored
		s.Editing = false
		s.Missing = nil
		s.Loading = true
		s.Status, s.StatusKind = "", StatusNone
		return s, CmdLoad

	case SubmitRequested:
		if !s.Editing || s.Submitting {
			return s, CmdNone
		}
		if missing := s.Profile.Missing(); len(missing) > 0 {
			s.Missing = missing
			return s, CmdNone
		}
		s.Missing = nil
		s.Submitting = true
		s.Status, s.StatusKind = "", StatusNone
		if s.Exists {
			return s, CmdUpdate
		}
		return s, CmdCreate

	case SubmitSucceeded:
		if !s.Submitting {
			return s, CmdNone
		}
		if e.Decoded {
			s.Profile = e.Profile
		}
		s.Stored = s.Profile
		s.Submitting = false
		s.Exists = true
		s.Editing = false
		s.Status, s.StatusKind = StatusSaved, StatusSuccess
		return s, CmdNone

	case SubmitFailed:
		if !s.Submitting {
			return s, CmdNone
		}
		s.Submitting = false
		s.Status, s.StatusKind = SubmitStatus(e.Err), StatusError
		return s, CmdNone
	}
	return s, CmdNone
}

func reduceLoaded(s State, o Outcome) State {
	s.Loading = false
	switch o := o.(type) {
	case Found:
		s.Profile = o.Profile
		s.Stored = o.Profile
		s.Exists = true
		s.Editing = false
	case NotFound:
		s.Profile = Profile{}
		s.Stored = Profile{}
		s.Exists = false
		s.Editing = !s.ReadOnly
	case Unauthorized:
		s.Status, s.StatusKind = StatusReauth, StatusError
	case Failed:
		s.Status, s.StatusKind = StatusLoadFailed, StatusError
	}
	return s
}

func without(fields []Field, f Field) []Field {
	out := fields[:0:0]
	for _, x := range fields {
		if x != f {
			out = append(out, x)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
