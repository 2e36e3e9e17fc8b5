package datastore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/digest"
	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

const findingsFileName = "findings.parquet"

// FindingsWriter exports a run's findings to <parquet_base_path>/runs/<run_id>/findings.parquet.
type FindingsWriter struct {
	config *config.StorageConfig
	logger zerolog.Logger
}

// NewFindingsWriter creates a new FindingsWriter.
func NewFindingsWriter(cfg *config.StorageConfig, logger zerolog.Logger) (*FindingsWriter, error) {
	if cfg == nil {
		return nil, errorwrapper.NewValidationError("config", cfg, "storage config cannot be nil")
	}
	if cfg.ParquetBasePath == "" {
		return nil, errorwrapper.NewValidationError("parquet_base_path", cfg.ParquetBasePath, "ParquetBasePath is not configured")
	}
	return &FindingsWriter{
		config: cfg,
		logger: logger.With().Str("module", "FindingsWriter").Logger(),
	}, nil
}

// FindingsPath returns the export path for runID.
func (fw *FindingsWriter) FindingsPath(runID string) string {
	return filepath.Join(fw.config.ParquetBasePath, "runs", runID, findingsFileName)
}

// WriteDigest writes every item of d and returns the file path. An empty digest still
// produces a file so each run has an artifact.
func (fw *FindingsWriter) WriteDigest(ctx context.Context, runID string, d *digest.Digest) (string, error) {
	if runID == "" {
		return "", errorwrapper.NewValidationError("run_id", runID, "run ID is required")
	}

	exportTime := time.Now()
	var rows []models.ParquetFinding
	for _, od := range d.Owners() {
		if err := ctx.Err(); err != nil {
			return "", errorwrapper.WrapError(err, "findings export cancelled")
		}
		for _, item := range od.Items {
			rows = append(rows, TransformToParquetFinding(item, runID, exportTime))
		}
	}

	filePath := fw.FindingsPath(runID)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", errorwrapper.WrapError(err, "failed to create findings export directory: "+filepath.Dir(filePath))
	}
	if err := writeParquetFile(filePath, rows, fw.compressionOption()); err != nil {
		return "", err
	}

	fw.logger.Info().Str("file_path", filePath).Int("records_written", len(rows)).Msg("Successfully wrote findings to Parquet file")
	return filePath, nil
}

func (fw *FindingsWriter) compressionOption() parquet.WriterOption {
	switch strings.ToLower(fw.config.CompressionCodec) {
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "none", "uncompressed", "":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		fw.logger.Warn().Str("codec", fw.config.CompressionCodec).Msg("Unsupported compression codec string, defaulting to Uncompressed")
		return parquet.Compression(&parquet.Uncompressed)
	}
}

func writeParquetFile(filePath string, rows []models.ParquetFinding, compression parquet.WriterOption) error {
	file, err := os.Create(filePath)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to create findings parquet file: "+filePath)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[models.ParquetFinding](file, compression)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			_ = writer.Close()
			return errorwrapper.WrapError(err, "failed to write findings to parquet file")
		}
	}
	if err := writer.Close(); err != nil {
		return errorwrapper.WrapError(err, "failed to finalise findings parquet file")
	}
	return nil
}

// readFindings loads an exported findings file.
func readFindings(ctx context.Context, filePath string) ([]models.ParquetFinding, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open findings parquet file for reading: "+filePath)
	}
	defer file.Close()

	reader := parquet.NewGenericReader[models.ParquetFinding](file)
	defer reader.Close()

	rows := make([]models.ParquetFinding, 0, reader.NumRows())
	for {
		if err := ctx.Err(); err != nil {
			return nil, errorwrapper.WrapError(err, "findings read cancelled")
		}
		batch := make([]models.ParquetFinding, 100)
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errorwrapper.WrapError(err, "failed to read findings from parquet file")
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}
