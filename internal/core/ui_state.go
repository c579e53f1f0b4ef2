package core

import (
	"errors"
	"fmt"
)

// UIMode enumerates the variants of UIState.
type UIMode int

const (
	UIClosed UIMode = iota
	UIConfirming
	UIEditing
)

func (m UIMode) String() string {
	switch m {
	case UIConfirming:
		return "confirming"
	case UIEditing:
		return "editing"
	default:
		return "closed"
	}
}

// ConfirmKind names an action that needs explicit operator confirmation.
type ConfirmKind string

const (
	ConfirmDeleteClient    ConfirmKind = "delete-client"
	ConfirmDeleteQuotation ConfirmKind = "delete-quotation"
	ConfirmDeleteUser      ConfirmKind = "delete-user"
	ConfirmCheckout        ConfirmKind = "checkout"
	ConfirmDiscardDraft    ConfirmKind = "discard-draft"
)

// ConfirmAction is the pending action shown in a confirmation prompt.
type ConfirmAction struct {
	Kind     ConfirmKind `json:"kind"`
	TargetID int         `json:"target_id,omitempty"`
	Prompt   string      `json:"prompt"`
}

// ErrInvalidTransition is returned when a UIState change would combine two variants.
var ErrInvalidTransition = errors.New("invalid ui state transition")

// UIState is the single screen state: closed, confirming one action, or editing
// one draft. Exactly one variant is active; the zero value is Closed.
type UIState struct {
	mode    UIMode
	action  ConfirmAction
	draftID string
}

// Closed returns the idle state.
func Closed() UIState { return UIState{} }

// Mode returns the active variant.
func (s UIState) Mode() UIMode { return s.mode }

// Action returns the pending action when confirming.
func (s UIState) Action() (ConfirmAction, bool) {
	if s.mode != UIConfirming {
		return ConfirmAction{}, false
	}
	return s.action, true
}

// DraftID returns the draft being edited when editing.
func (s UIState) DraftID() (string, bool) {
	if s.mode != UIEditing {
		return "", false
	}
	return s.draftID, true
}

// Confirm moves to the confirming variant. Allowed from Closed, and from Editing
// only to confirm checkout or discarding the open draft; the draft resumes with
// Resume once the prompt is answered.
func (s UIState) Confirm(a ConfirmAction) (UIState, error) {
	switch s.mode {
	case UIClosed:
		return UIState{mode: UIConfirming, action: a}, nil
	case UIEditing:
		if a.Kind == ConfirmCheckout || a.Kind == ConfirmDiscardDraft {
			return UIState{mode: UIConfirming, action: a, draftID: s.draftID}, nil
		}
	}
	return s, fmt.Errorf("%w: confirm %s while %s", ErrInvalidTransition, a.Kind, s.mode)
}

// Edit moves to the editing variant. Only allowed from Closed.
func (s UIState) Edit(draftID string) (UIState, error) {
	if s.mode != UIClosed {
		return s, fmt.Errorf("%w: edit while %s", ErrInvalidTransition, s.mode)
	}
	if draftID == "" {
		return s, fmt.Errorf("%w: empty draft id", ErrInvalidTransition)
	}
	return UIState{mode: UIEditing, draftID: draftID}, nil
}

// Resume returns to the draft that was open when a confirmation started, or to
// Closed if none was.
func (s UIState) Resume() UIState {
	if s.mode == UIConfirming && s.draftID != "" {
		return UIState{mode: UIEditing, draftID: s.draftID}
	}
	if s.mode == UIEditing {
		return s
	}
	return Closed()
}

// Close returns to the idle state from any variant.
func (s UIState) Close() UIState { return Closed() }
