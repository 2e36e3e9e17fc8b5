package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/orchestrator"
	"github.com/aleister1102/grcdigest/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one digest pass and print the per-owner payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(config.ModeOneTime)
			if err != nil {
				return err
			}
			appLogger, err := initLogger(cfg)
			if err != nil {
				return err
			}
			defer appLogger.Close()
			zLogger := *appLogger.GetZerolog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			orch, closeFn, err := orchestrator.NewFromConfig(cfg, zLogger)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil {
					zLogger.Warn().Err(err).Msg("Failed to close run history database")
				}
			}()

			result, err := orch.Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path := viper.GetString("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return errorwrapper.WrapError(err, "failed to create output file")
				}
				defer f.Close()
				out = f
			}
			return writePayload(out, server.DigestResponse{RunID: result.RunID, Owners: result.Digest})
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write the JSON payload to this file instead of stdout")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	return cmd
}

func writePayload(w io.Writer, payload server.DigestResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /api/digest for on-demand runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(config.ModeServe)
			if err != nil {
				return err
			}
			if v := viper.GetString("listen"); v != "" {
				cfg.ServerConfig.ListenAddress = v
			}
			appLogger, err := initLogger(cfg)
			if err != nil {
				return err
			}
			defer appLogger.Close()
			zLogger := *appLogger.GetZerolog()

			orch, closeFn, err := orchestrator.NewFromConfig(cfg, zLogger)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil {
					zLogger.Warn().Err(err).Msg("Failed to close run history database")
				}
			}()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.NewServer(cfg.ServerConfig, orch, zLogger).Run(ctx)
		},
	}

	cmd.Flags().String("listen", "", "Listen address override, e.g. :8080")
	_ = viper.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	return cmd
}
