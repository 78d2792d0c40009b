package conceal

import "errors"

var (
	// ErrInvalidBuffer means the buffer handle does not resolve.
	ErrInvalidBuffer = errors.New("invalid buffer")
	// ErrNoParser means the syntax source has no parser for the buffer.
	ErrNoParser = errors.New("no parser for buffer")
	// ErrNoGrammar means the buffer's grammar has no comment query support.
	ErrNoGrammar = errors.New("no comment query for grammar")
	// ErrParseFailed means the syntax source attempted a parse and failed.
	ErrParseFailed = errors.New("parse failed")
)

// SpanSource produces comment spans for a buffer's current text revision.
// Errors are one of ErrInvalidBuffer, ErrNoParser, ErrNoGrammar or
// ErrParseFailed, possibly wrapped.
type SpanSource interface {
	CommentSpans(id BufferID) ([]Span, error)
}

// TextSource is the line-oriented view of buffer text.
type TextSource interface {
	Line(id BufferID, row int) string
	LineCount(id BufferID) int
}

// Controller rebuilds a buffer's Concealment Set from fresh spans. The host
// calls Refresh on enable and on text change; calls for one buffer must not
// overlap. A failed refresh leaves the prior set installed untouched.
type Controller struct {
	state *State
	spans SpanSource
	text  TextSource
}

func NewController(state *State, spans SpanSource, text TextSource) *Controller {
	return &Controller{state: state, spans: spans, text: text}
}

// State exposes the underlying Overlay State for navigators and rendering.
func (c *Controller) State() *State {
	return c.state
}

// Refresh re-requests comment spans and swaps in a freshly built set. The
// build happens before the swap, so readers never observe a partial set.
// On error nothing changes and the typed reason propagates to the caller.
func (c *Controller) Refresh(id BufferID) error {
	spans, err := c.spans.CommentSpans(id)
	if err != nil {
		return err
	}
	c.state.Activate(id, spans, func(row int) string {
		return c.text.Line(id, row)
	})
	return nil
}

// Enable turns concealment on for the buffer via a refresh.
func (c *Controller) Enable(id BufferID) error {
	return c.Refresh(id)
}

// Disable removes the buffer's set. Idempotent.
func (c *Controller) Disable(id BufferID) {
	c.state.Deactivate(id)
}

// Toggle flips concealment for the buffer and reports the new state.
func (c *Controller) Toggle(id BufferID) (bool, error) {
	if c.state.IsActive(id) {
		c.state.Deactivate(id)
		return false, nil
	}
	if err := c.Enable(id); err != nil {
		return false, err
	}
	return true, nil
}

// IsEnabled reports whether concealment is active for the buffer.
func (c *Controller) IsEnabled(id BufferID) bool {
	return c.state.IsActive(id)
}

// Stats reports concealment coverage over the buffer's current line count.
func (c *Controller) Stats(id BufferID) Stats {
	return c.state.Stats(id, c.text.LineCount(id))
}

// MoveVertical is the skip-aware vertical step over the buffer's current
// line count.
func (c *Controller) MoveVertical(id BufferID, row, dir, count int) int {
	return c.state.MoveVertical(id, row, dir, count, c.text.LineCount(id))
}

// MoveHorizontal is the skip-aware horizontal step over the row's current
// length.
func (c *Controller) MoveHorizontal(id BufferID, row, col, dir, count int) int {
	rowLength := len([]rune(c.text.Line(id, row)))
	return c.state.MoveHorizontal(id, row, col, dir, count, rowLength)
}
