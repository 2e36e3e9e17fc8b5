package orchestrator

import (
	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/datastore"
	"github.com/aleister1102/grcdigest/internal/extractor"
	"github.com/aleister1102/grcdigest/internal/notifier"
	"github.com/aleister1102/grcdigest/internal/register"
	"github.com/rs/zerolog"
)

// NewFromConfig wires the register client, extractor, storage and notifier described by cfg.
// The returned close function releases the history database, if one was opened.
func NewFromConfig(cfg *config.GlobalConfig, logger zerolog.Logger) (*DigestOrchestrator, func() error, error) {
	noop := func() error { return nil }

	client, err := register.NewClientFromConfig(cfg.RegisterConfig, logger)
	if err != nil {
		return nil, noop, err
	}

	facing := extractor.NewRegisterFacingLookup(client, logger)
	email := extractor.NewRegisterEmailLookup(client, cfg.ExtractorConfig.FailOnMissingEmail, logger)

	deps := Dependencies{
		Source:    client,
		Extractor: extractor.NewFindingExtractor(facing, email, cfg.ExtractorConfig, logger),
	}

	closeFn := noop
	if cfg.StorageConfig.RecordHistory {
		history, err := datastore.NewHistoryDB(cfg.StorageConfig.HistoryDBPath, logger)
		if err != nil {
			return nil, noop, errorwrapper.WrapError(err, "failed to open run history database")
		}
		deps.History = history
		closeFn = history.Close
	}

	if cfg.StorageConfig.ExportParquet {
		writer, err := datastore.NewFindingsWriter(&cfg.StorageConfig, logger)
		if err != nil {
			_ = closeFn()
			return nil, noop, err
		}
		deps.Exporter = writer
	}

	if cfg.NotificationConfig.DiscordWebhookURL != "" {
		dn := notifier.NewDiscordNotifier(logger, nil)
		deps.Notifier = notifier.NewNotificationHelper(dn, cfg.NotificationConfig, logger)
	}

	return NewDigestOrchestrator(deps, cfg.Mode, logger), closeFn, nil
}
