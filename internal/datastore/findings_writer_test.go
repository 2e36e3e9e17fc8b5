package datastore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/digest"
	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDigest() *digest.Digest {
	m := models.NewOwnerFindingsMap()
	m.Append(models.Finding{
		FindingName:     "Outdated TLS",
		RiskLevel:       digest.RiskHigh,
		Owner:           "Alice",
		OwnerSource:     models.OwnerSourceRemediationOwner,
		AssetName:       "web-01",
		DateFound:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		DateSourceField: models.DateSourceRemediationDate,
		OwnerEmail:      "alice@example.com",
		EmailResolved:   true,
		RecordID:        "101",
		InternetFacing:  models.InternetFacingYes,
	})
	m.Append(models.Finding{
		FindingName:     "Weak password policy",
		RiskLevel:       "Informational",
		Owner:           models.UnresolvedOwnerKey,
		OwnerSource:     models.OwnerSourceUnresolved,
		AssetName:       "ad-01",
		DateFound:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateSourceField: models.DateSourceCreateDate,
		RecordID:        "102",
		InternetFacing:  models.InternetFacingNotAvailable,
	})
	return digest.BuildDigest(m, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
}

func TestNewFindingsWriter_Validation(t *testing.T) {
	_, err := NewFindingsWriter(nil, zerolog.Nop())
	assert.True(t, errors.Is(err, errorwrapper.ErrInvalidInput))

	_, err = NewFindingsWriter(&config.StorageConfig{}, zerolog.Nop())
	assert.True(t, errors.Is(err, errorwrapper.ErrInvalidInput))
}

func TestFindingsWriter_WriteAndRead(t *testing.T) {
	tempDir := t.TempDir()
	writer, err := NewFindingsWriter(&config.StorageConfig{ParquetBasePath: tempDir}, zerolog.Nop())
	require.NoError(t, err)

	path, err := writer.WriteDigest(context.Background(), "run-1", sampleDigest())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "runs", "run-1", "findings.parquet"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	rows, err := readFindings(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	alice := rows[0]
	assert.Equal(t, "run-1", alice.RunID)
	assert.Equal(t, "101", alice.RecordID)
	assert.Equal(t, "Alice", alice.Owner)
	require.NotNil(t, alice.OwnerEmail)
	assert.Equal(t, "alice@example.com", *alice.OwnerEmail)
	require.NotNil(t, alice.DueDate)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), models.UnixMilliToTimeOptional(alice.DueDate))
	assert.True(t, alice.Overdue)

	unresolved := rows[1]
	assert.Equal(t, models.UnresolvedOwnerKey, unresolved.Owner)
	assert.Nil(t, unresolved.OwnerEmail)
	assert.Equal(t, "Unresolved", unresolved.OwnerSource)
	assert.False(t, unresolved.Overdue)
}

func TestFindingsWriter_EmptyDigest(t *testing.T) {
	writer, err := NewFindingsWriter(&config.StorageConfig{ParquetBasePath: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)

	path, err := writer.WriteDigest(context.Background(), "run-empty", digest.BuildDigest(models.NewOwnerFindingsMap(), time.Now()))
	require.NoError(t, err)

	rows, err := readFindings(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFindingsWriter_RequiresRunID(t *testing.T) {
	writer, err := NewFindingsWriter(&config.StorageConfig{ParquetBasePath: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)

	_, err = writer.WriteDigest(context.Background(), "", sampleDigest())
	assert.True(t, errors.Is(err, errorwrapper.ErrInvalidInput))
}

func TestFindingsWriter_CompressionCodecs(t *testing.T) {
	for _, codec := range []string{"none", "snappy", "gzip", "zstd", "bogus"} {
		t.Run(codec, func(t *testing.T) {
			writer, err := NewFindingsWriter(&config.StorageConfig{ParquetBasePath: t.TempDir(), CompressionCodec: codec}, zerolog.Nop())
			require.NoError(t, err)

			path, err := writer.WriteDigest(context.Background(), "run-"+codec, sampleDigest())
			require.NoError(t, err)

			rows, err := readFindings(context.Background(), path)
			require.NoError(t, err)
			assert.NotEmpty(t, rows)
		})
	}
}
