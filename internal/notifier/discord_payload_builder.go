package notifier

import "github.com/aleister1102/grcdigest/internal/models"

// DiscordMessagePayloadBuilder helps in constructing models.DiscordMessagePayload objects.
type DiscordMessagePayloadBuilder struct {
	payload models.DiscordMessagePayload
}

func NewDiscordMessagePayloadBuilder() *DiscordMessagePayloadBuilder {
	return &DiscordMessagePayloadBuilder{
		payload: models.DiscordMessagePayload{Username: DiscordUsername},
	}
}

func (b *DiscordMessagePayloadBuilder) WithContent(content string) *DiscordMessagePayloadBuilder {
	b.payload.Content = content
	return b
}

func (b *DiscordMessagePayloadBuilder) AddEmbed(embed models.DiscordEmbed) *DiscordMessagePayloadBuilder {
	b.payload.Embeds = append(b.payload.Embeds, embed)
	return b
}

// WithRoleMentions mentions the given roles in the content and allows only those mentions.
func (b *DiscordMessagePayloadBuilder) WithRoleMentions(roleIDs []string) *DiscordMessagePayloadBuilder {
	if len(roleIDs) == 0 {
		return b
	}
	mentions := ""
	for _, id := range roleIDs {
		mentions += "<@&" + id + "> "
	}
	b.payload.Content = mentions + b.payload.Content
	b.payload.AllowedMentions = &models.AllowedMentions{Roles: roleIDs}
	return b
}

func (b *DiscordMessagePayloadBuilder) Build() models.DiscordMessagePayload {
	return b.payload
}
