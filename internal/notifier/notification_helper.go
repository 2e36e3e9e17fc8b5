package notifier

import (
	"context"
	"time"

	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/rs/zerolog"
)

// RunNotifier reports the outcome of a digest run.
type RunNotifier interface {
	SendRunCompletionNotification(ctx context.Context, summary models.RunSummaryData)
}

// NotificationHelper decides whether and what to send for a finished run.
type NotificationHelper struct {
	discordNotifier *DiscordNotifier
	cfg             config.NotificationConfig
	logger          zerolog.Logger
}

// NewNotificationHelper creates a new NotificationHelper.
func NewNotificationHelper(dn *DiscordNotifier, cfg config.NotificationConfig, logger zerolog.Logger) *NotificationHelper {
	return &NotificationHelper{
		discordNotifier: dn,
		cfg:             cfg,
		logger:          logger.With().Str("module", "NotificationHelper").Logger(),
	}
}

// SendRunCompletionNotification sends a success or failure message depending on summary.Status
// and the notify_on_* switches. Send errors are logged, never returned.
func (nh *NotificationHelper) SendRunCompletionNotification(ctx context.Context, summary models.RunSummaryData) {
	if nh.discordNotifier == nil || nh.cfg.DiscordWebhookURL == "" {
		nh.logger.Debug().Msg("Discord webhook not configured, skipping run notification.")
		return
	}

	var payload models.DiscordMessagePayload
	switch summary.Status {
	case models.RunStatusCompleted:
		if !nh.cfg.NotifyOnSuccess {
			return
		}
		payload = FormatRunCompleteMessage(summary, nh.cfg)
	case models.RunStatusFailed:
		if !nh.cfg.NotifyOnFailure {
			return
		}
		payload = FormatRunFailureMessage(summary, nh.cfg)
	default:
		nh.logger.Warn().Str("status", string(summary.Status)).Msg("Unknown run status for notification, skipping.")
		return
	}

	// the caller's context may already be cancelled when a run fails
	notificationCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout*time.Second)
	defer cancel()

	if err := nh.discordNotifier.SendNotification(notificationCtx, nh.cfg.DiscordWebhookURL, payload); err != nil {
		nh.logger.Error().Err(err).Str("run_id", summary.RunID).Msg("Failed to send run notification")
		return
	}
	nh.logger.Info().Str("run_id", summary.RunID).Str("status", string(summary.Status)).Msg("Run notification sent")
}
