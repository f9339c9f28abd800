package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
)

const (
	cmdSell   = "sell"
	cmdPanel  = "panel"
	cmdNotify = "notify"
	cmdClose  = "close"

	optCategory = "category"
	optRole     = "role"
	optMessage  = "message"
)

var (
	adminOnly      int64 = discordgo.PermissionAdministrator
	manageChannels int64 = discordgo.PermissionManageChannels
)

// commands are registered on the configured guild when the gateway is
// ready. Default permissions hide admin commands from everyone else; the
// dispatcher checks again because guild admins can override them.
func commands() []*discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: string(c), Value: string(c)})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdSell,
			Description: "List a service or product anonymously.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optCategory,
				Description: "What you are selling",
				Choices:     choices,
			}},
		},
		{
			Name:                     cmdPanel,
			Description:              "Post the marketplace dashboard.",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     cmdNotify,
			Description:              "Direct-message every member of a role.",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        optRole,
					Description: "Role to notify",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optMessage,
					Description: "Message to send",
					Required:    true,
				},
			},
		},
		{
			Name:                     cmdClose,
			Description:              "Close this support ticket.",
			DefaultMemberPermissions: &manageChannels,
		},
	}
}
