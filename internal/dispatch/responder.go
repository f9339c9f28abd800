package dispatch

import (
	"context"

	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

// Responder answers the interaction that produced an action. The platform
// expects a first response quickly, so slow actions Defer before doing
// their work; Reply and Announce then become follow-ups.
type Responder interface {
	// Defer acknowledges the interaction with a private "thinking" state.
	Defer(ctx context.Context) error
	// Reply sends a message only the actor can see.
	Reply(ctx context.Context, msg platform.Message) error
	// Announce sends a message everyone in the channel can see.
	Announce(ctx context.Context, msg platform.Message) error
	// ShowForm opens a form. Only valid as the first response.
	ShowForm(ctx context.Context, form Form) error
}

// Form is a modal with text inputs.
type Form struct {
	ID     string
	Title  string
	Fields []FormField
}

// FormField is one text input.
type FormField struct {
	ID          string
	Label       string
	Placeholder string
	Paragraph   bool
	Required    bool
	MaxLength   int
}
