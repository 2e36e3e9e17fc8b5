package notifier

// Discord formatting constants
const (
	DiscordUsername   = "GRC Findings Digest"
	SuccessEmbedColor = 0x5CB85C // Bootstrap success green
	ErrorEmbedColor   = 0xD9534F // Bootstrap danger red
	WarningEmbedColor = 0xF0AD4E // Bootstrap warning orange
)

// Error formatting constants
const (
	MaxErrorTextLength    = 800
	MaxSingleErrorLength  = 300
	MaxErrorSampleCount   = 3
	notificationTimeout   = 30
	defaultHTTPTimeoutSec = 20
)
