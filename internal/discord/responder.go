package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/marketbot/internal/dispatch"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

// responder answers one interaction. The first call uses the interaction
// response; later calls become follow-up messages.
type responder struct {
	s *discordgo.Session
	i *discordgo.Interaction

	mu        sync.Mutex
	responded bool
}

func newResponder(s *discordgo.Session, i *discordgo.Interaction) *responder {
	return &responder{s: s, i: i}
}

func (r *responder) Defer(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.responded {
		return nil
	}
	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return classify("defer interaction", err)
	}
	r.responded = true
	return nil
}

func (r *responder) Reply(ctx context.Context, msg platform.Message) error {
	return r.send(ctx, msg, discordgo.MessageFlagsEphemeral)
}

func (r *responder) Announce(ctx context.Context, msg platform.Message) error {
	return r.send(ctx, msg, 0)
}

func (r *responder) send(ctx context.Context, msg platform.Message, flags discordgo.MessageFlags) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.responded {
		_, err := r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
			Content:    msg.Content,
			Embeds:     toEmbeds(msg.Records),
			Components: toComponents(msg.Buttons),
			Flags:      flags,
		}, discordgo.WithContext(ctx))
		return classify("follow up", err)
	}

	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    msg.Content,
			Embeds:     toEmbeds(msg.Records),
			Components: toComponents(msg.Buttons),
			Flags:      flags,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return classify("respond", err)
	}
	r.responded = true
	return nil
}

func (r *responder) ShowForm(ctx context.Context, form dispatch.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: modalData(form),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return classify("show form", err)
	}
	r.responded = true
	return nil
}

func modalData(form dispatch.Form) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(form.Fields))
	for _, f := range form.Fields {
		style := discordgo.TextInputShort
		if f.Paragraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    f.ID,
				Label:       f.Label,
				Placeholder: f.Placeholder,
				Style:       style,
				Required:    f.Required,
				MaxLength:   f.MaxLength,
			},
		}})
	}
	return &discordgo.InteractionResponseData{
		CustomID:   form.ID,
		Title:      form.Title,
		Components: rows,
	}
}

var _ dispatch.Responder = (*responder)(nil)
