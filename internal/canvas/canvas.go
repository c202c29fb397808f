package canvas

import (
	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/state"
)

// Canvas drives the editing side of one session. Every change goes
// through StateWriter.Replace with a whole new AgentState derived from the
// latest snapshot; the only local state is the open dialog's draft.
// A Canvas is used from a single goroutine (the UI event loop).
type Canvas struct {
	store StateWriter
	mode  Mode

	draft state.ReferenceMaterial

	editDraft   state.ReferenceMaterial
	originalURL string
}

func New(store StateWriter) *Canvas {
	return &Canvas{store: store, draft: emptyDraft()}
}

func emptyDraft() state.ReferenceMaterial {
	return state.ReferenceMaterial{Type: state.MaterialCompetitorNote}
}

func (c *Canvas) Mode() Mode {
	return c.mode
}

// returns the current store value
func (c *Canvas) State() state.AgentState {
	return c.store.Snapshot().State
}

func (c *Canvas) update(fn func(state.AgentState) state.AgentState) state.Snapshot {
	return c.store.Replace(fn(c.State()))
}

func (c *Canvas) SetModel(model string) state.Snapshot {
	return c.update(func(s state.AgentState) state.AgentState { return s.WithModel(model) })
}

func (c *Canvas) SetProductName(name string) state.Snapshot {
	return c.update(func(s state.AgentState) state.AgentState { return s.WithProductName(name) })
}

func (c *Canvas) SetProductCategory(category string) state.Snapshot {
	return c.update(func(s state.AgentState) state.AgentState { return s.WithProductCategory(category) })
}

func (c *Canvas) SetTargetAudience(audience string) state.Snapshot {
	return c.update(func(s state.AgentState) state.AgentState { return s.WithTargetAudience(audience) })
}

func (c *Canvas) SetNote(note string) state.Snapshot {
	return c.update(func(s state.AgentState) state.AgentState { return s.WithNote(note) })
}

func (c *Canvas) SetNoteStyle(style state.NoteStyle) state.Snapshot {
	return c.update(func(s state.AgentState) state.AgentState { return s.WithNoteStyle(style) })
}

// PrepareSubmit clears the progress log ahead of sending a new chat
// message. It is not rolled back if the send fails.
func (c *Canvas) PrepareSubmit() state.Snapshot {
	return c.update(state.AgentState.ClearLogs)
}

// OpenAdd opens the add dialog with the current draft. A draft left over
// from an unsuccessful confirm is kept.
func (c *Canvas) OpenAdd() error {
	if c.mode != ModeIdle {
		return ErrInvalidTransition
	}

	c.mode = ModeAdding
	return nil
}

func (c *Canvas) Draft() state.ReferenceMaterial {
	return c.draft
}

func (c *Canvas) SetDraft(m state.ReferenceMaterial) error {
	if c.mode != ModeAdding {
		return ErrInvalidTransition
	}

	c.draft = m
	return nil
}

// ConfirmAdd appends the draft when its url is set, then resets the draft
// and closes the dialog. With an empty url nothing happens and the dialog
// stays open.
func (c *Canvas) ConfirmAdd() (bool, error) {
	if c.mode != ModeAdding {
		return false, ErrInvalidTransition
	}

	next, ok := c.State().AddReferenceMaterial(c.draft)
	if !ok {
		return false, nil
	}

	c.store.Replace(next)
	c.draft = emptyDraft()
	c.mode = ModeIdle

	return true, nil
}

// OpenEdit copies the material keyed by url into the edit draft and
// remembers url as the key the edit will be written back to.
func (c *Canvas) OpenEdit(url string) error {
	if c.mode != ModeIdle {
		return ErrInvalidTransition
	}

	m, ok := c.State().FindReferenceMaterial(url)
	if !ok {
		return ErrMaterialNotFound
	}

	c.editDraft = m
	c.originalURL = url
	c.mode = ModeEditing

	return nil
}

func (c *Canvas) EditDraft() state.ReferenceMaterial {
	return c.editDraft
}

// the key captured when the edit dialog opened
func (c *Canvas) OriginalURL() string {
	return c.originalURL
}

func (c *Canvas) SetEditDraft(m state.ReferenceMaterial) error {
	if c.mode != ModeEditing {
		return ErrInvalidTransition
	}

	c.editDraft = m
	return nil
}

// ConfirmEdit writes the draft over the entry keyed by the original url.
// If that entry is gone (the agent removed it meanwhile) the edit is
// dropped without touching the store. The dialog closes either way.
func (c *Canvas) ConfirmEdit() (bool, error) {
	if c.mode != ModeEditing {
		return false, ErrInvalidTransition
	}

	next, matched := c.State().ReplaceReferenceMaterial(c.originalURL, c.editDraft)
	if matched {
		c.store.Replace(next)
	}

	c.closeEdit()
	return matched, nil
}

// Cancel closes whichever dialog is open. The add draft survives, the
// edit draft does not.
func (c *Canvas) Cancel() {
	if c.mode == ModeEditing {
		c.closeEdit()
	}

	c.mode = ModeIdle
}

func (c *Canvas) closeEdit() {
	c.editDraft = state.ReferenceMaterial{}
	c.originalURL = ""
	c.mode = ModeIdle
}

// removes every material keyed by url
func (c *Canvas) Remove(url string) state.Snapshot {
	return c.update(func(s state.AgentState) state.AgentState { return s.RemoveReferenceMaterial(url) })
}

// Confirmation builds the view of a delete request against the current
// store. It never modifies the store; the decision goes back to the agent.
func (c *Canvas) Confirmation(req bridge.Request, available bool) (Confirmation, error) {
	return BuildConfirmation(c.State(), req, available)
}

func BuildConfirmation(s state.AgentState, req bridge.Request, available bool) (Confirmation, error) {
	args, err := bridge.DecodeDeleteArgs(req)
	if err != nil {
		return Confirmation{}, err
	}

	return Confirmation{
		Request:   req,
		URLs:      args.URLs,
		Materials: s.MatchingMaterials(args.URLs),
		Available: available,
	}, nil
}
