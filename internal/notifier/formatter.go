package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/models"
)

// FormatRunCompleteMessage renders the success embed for a digest run.
func FormatRunCompleteMessage(summary models.RunSummaryData, cfg config.NotificationConfig) models.DiscordMessagePayload {
	color := SuccessEmbedColor
	if summary.UnresolvedOwners > 0 || summary.UnresolvedEmails > 0 {
		color = WarningEmbedColor
	}

	embed := NewDiscordEmbedBuilder().
		WithTitle("Findings digest completed").
		WithDescription(fmt.Sprintf("Run `%s` finished in %s.", summary.RunID, summary.Duration.Round(time.Second))).
		WithColor(color).
		WithTimestamp(time.Now()).
		AddField("Records", fmt.Sprintf("%d", summary.TotalRecords), true).
		AddField("Findings", fmt.Sprintf("%d", summary.InScopeFindings), true).
		AddField("Owners", fmt.Sprintf("%d", summary.Owners), true).
		AddField("Overdue", fmt.Sprintf("%d", summary.OverdueFindings), true).
		AddField("Unresolved owners", fmt.Sprintf("%d", summary.UnresolvedOwners), true).
		AddField("Unresolved emails", fmt.Sprintf("%d", summary.UnresolvedEmails), true)
	if summary.ParquetExportPath != "" {
		embed.AddField("Export", "`"+summary.ParquetExportPath+"`", false)
	}
	embed.WithFooter("Mode: " + summary.Mode)

	return NewDiscordMessagePayloadBuilder().
		AddEmbed(embed.Build()).
		Build()
}

// FormatRunFailureMessage renders the failure embed and mentions the configured roles.
func FormatRunFailureMessage(summary models.RunSummaryData, cfg config.NotificationConfig) models.DiscordMessagePayload {
	embed := NewDiscordEmbedBuilder().
		WithTitle("Findings digest failed").
		WithDescription(fmt.Sprintf("Run `%s` aborted, no digest was produced.", summary.RunID)).
		WithColor(ErrorEmbedColor).
		WithTimestamp(time.Now()).
		AddField("Errors", formatErrors(summary.ErrorMessages), false).
		WithFooter("Mode: " + summary.Mode)

	return NewDiscordMessagePayloadBuilder().
		WithContent("Digest run failed.").
		WithRoleMentions(cfg.MentionRoleIDs).
		AddEmbed(embed.Build()).
		Build()
}

func formatErrors(errs []string) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	var b strings.Builder
	for i, e := range errs {
		if i == MaxErrorSampleCount {
			fmt.Fprintf(&b, "... and %d more", len(errs)-MaxErrorSampleCount)
			break
		}
		b.WriteString("- " + truncateString(e, MaxSingleErrorLength) + "\n")
	}
	return truncateString(strings.TrimRight(b.String(), "\n"), MaxErrorTextLength)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
