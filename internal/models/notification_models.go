package models

import "time"

// DiscordMessagePayload represents the JSON payload sent to a Discord webhook.
type DiscordMessagePayload struct {
	Content         string           `json:"content,omitempty"`          // Message content (text)
	Username        string           `json:"username,omitempty"`         // Override the default webhook username
	AvatarURL       string           `json:"avatar_url,omitempty"`       // Override the default webhook avatar
	TTS             bool             `json:"tts,omitempty"`              // Whether this is a text-to-speech message
	Embeds          []DiscordEmbed   `json:"embeds,omitempty"`           // Array of embed objects
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"` // Allowed mentions for the message
	// Files      []interface{}   `json:"files"` // For file uploads, handled by multipart/form-data, not directly in JSON
}

// AllowedMentions specifies how mentions should be handled in a message.
type AllowedMentions struct {
	Parse       []string `json:"parse,omitempty"`        // Types of mentions to parse (e.g., "roles", "users", "everyone")
	Roles       []string `json:"roles,omitempty"`        // Array of role_ids to mention (max 100)
	Users       []string `json:"users,omitempty"`        // Array of user_ids to mention (max 100)
	RepliedUser bool     `json:"replied_user,omitempty"` // For replies, whether to mention the author of the message being replied to
}

// DiscordEmbed represents a Discord embed object.
type DiscordEmbed struct {
	Title       string                 `json:"title,omitempty"`       // Title of embed
	Description string                 `json:"description,omitempty"` // Description of embed
	URL         string                 `json:"url,omitempty"`         // URL of embed
	Timestamp   string                 `json:"timestamp,omitempty"`   // ISO8601 timestamp
	Color       int                    `json:"color,omitempty"`       // Color code of the embed
	Footer      *DiscordEmbedFooter    `json:"footer,omitempty"`
	Image       *DiscordEmbedImage     `json:"image,omitempty"`
	Thumbnail   *DiscordEmbedThumbnail `json:"thumbnail,omitempty"`
	Author      *DiscordEmbedAuthor    `json:"author,omitempty"`
	Fields      []DiscordEmbedField    `json:"fields,omitempty"` // Array of embed field objects
}

// DiscordEmbedFooter represents the footer of an embed.
type DiscordEmbedFooter struct {
	Text    string `json:"text"`               // Footer text
	IconURL string `json:"icon_url,omitempty"` // URL of footer icon (only supports http(s) and attachments)
}

// DiscordEmbedImage represents the image of an embed.
type DiscordEmbedImage struct {
	URL string `json:"url"` // Source URL of image (only supports http(s) and attachments)
}

// DiscordEmbedThumbnail represents the thumbnail of an embed.
type DiscordEmbedThumbnail struct {
	URL string `json:"url"` // Source URL of thumbnail (only supports http(s) and attachments)
}

// DiscordEmbedAuthor represents the author of an embed.
type DiscordEmbedAuthor struct {
	Name    string `json:"name"`               // Name of author
	URL     string `json:"url,omitempty"`      // URL of author (only supports http(s))
	IconURL string `json:"icon_url,omitempty"` // URL of author icon (only supports http(s) and attachments)
}

// DiscordEmbedField represents a field in an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`             // Name of the field
	Value  string `json:"value"`            // Value of the field
	Inline bool   `json:"inline,omitempty"` // Whether or not this field should display inline
}

// RunSummaryData holds all relevant information about a digest run to be used in notifications.
type RunSummaryData struct {
	RunID             string        // Unique identifier for the run
	Mode              string        // "onetime" or "serve"
	Status            RunStatus     // Final status of the run
	TotalRecords      int           // Records delivered by the findings register
	InScopeFindings   int           // Findings produced by extraction
	Owners            int           // Distinct owner keys
	UnresolvedOwners  int           // Findings grouped under the unresolved bucket
	UnresolvedEmails  int           // Findings whose owner email could not be looked up
	OverdueFindings   int           // Findings past their remediation due date
	Duration          time.Duration // Wall time of the run
	ParquetExportPath string        // Findings export written for this run, if any
	ErrorMessages     []string      // Hard failures that aborted the run
}

// RunStatus defines the possible states of a digest run.
type RunStatus string

const (
	RunStatusStarted   RunStatus = "STARTED"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// GetDefaultRunSummaryData initializes a RunSummaryData with default/empty values.
func GetDefaultRunSummaryData() RunSummaryData {
	return RunSummaryData{
		Mode:          "Unknown",
		Status:        RunStatusStarted,
		ErrorMessages: []string{},
	}
}
