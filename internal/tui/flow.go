package tui

import (
	"errors"
	"fmt"

	"github.com/muurk/customers/internal/api"
	"github.com/muurk/customers/internal/form"
)

// Phase is the state of the add-customer dialog
type Phase int

const (
	PhaseDialogClosed Phase = iota
	PhaseDialogOpen
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseDialogClosed:
		return "dialog_closed"
	case PhaseDialogOpen:
		return "dialog_open"
	case PhaseSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

var (
	// ErrInvalidTransition is returned when an action is not allowed in the current phase
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidDraft is returned by BeginSubmit when a required field is blank
	ErrInvalidDraft = errors.New("draft is not valid")
)

// Flow sequences the dialog: open, edit, submit, then close on success or
// reopen with the same draft on failure.
//
//	DialogClosed --OpenDialog--> DialogOpen
//	DialogOpen   --Cancel------> DialogClosed   (form reset)
//	DialogOpen   --BeginSubmit-> Submitting
//	Submitting   --Succeed-----> DialogClosed   (form reset)
//	Submitting   --Fail--------> DialogOpen     (form kept)
type Flow struct {
	phase Phase
	form  *form.Form
}

// NewFlow returns a flow with the dialog closed. A nil form gets a fresh one.
func NewFlow(f *form.Form) *Flow {
	if f == nil {
		f = form.New()
	}
	return &Flow{phase: PhaseDialogClosed, form: f}
}

// Phase returns the current phase
func (f *Flow) Phase() Phase {
	return f.phase
}

// Form returns the draft being edited
func (f *Flow) Form() *form.Form {
	return f.form
}

// OpenDialog shows the dialog
func (f *Flow) OpenDialog() error {
	if err := f.expect("open dialog", PhaseDialogClosed); err != nil {
		return err
	}
	f.phase = PhaseDialogOpen
	return nil
}

// Cancel closes the dialog and discards the draft
func (f *Flow) Cancel() error {
	if err := f.expect("cancel", PhaseDialogOpen); err != nil {
		return err
	}
	f.form.Reset()
	f.phase = PhaseDialogClosed
	return nil
}

// BeginSubmit moves to Submitting and returns the payload to POST. The
// draft must be valid; otherwise the phase is unchanged and the error wraps
// both ErrInvalidDraft and the form's *ValidationError.
func (f *Flow) BeginSubmit() (api.Customer, error) {
	if err := f.expect("submit", PhaseDialogOpen); err != nil {
		return api.Customer{}, err
	}
	if err := f.form.Validate(); err != nil {
		return api.Customer{}, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	f.phase = PhaseSubmitting
	return f.form.Draft().Customer(), nil
}

// Succeed closes the dialog after a create went through and resets the form
func (f *Flow) Succeed() error {
	if err := f.expect("succeed", PhaseSubmitting); err != nil {
		return err
	}
	f.form.Reset()
	f.phase = PhaseDialogClosed
	return nil
}

// Fail returns to the open dialog with the draft untouched
func (f *Flow) Fail() error {
	if err := f.expect("fail", PhaseSubmitting); err != nil {
		return err
	}
	f.phase = PhaseDialogOpen
	return nil
}

func (f *Flow) expect(action string, want Phase) error {
	if f.phase != want {
		return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, action, f.phase)
	}
	return nil
}
