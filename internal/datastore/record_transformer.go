package datastore

import (
	"time"

	"github.com/aleister1102/grcdigest/internal/digest"
	"github.com/aleister1102/grcdigest/internal/models"
)

// TransformToParquetFinding converts a digest item to its parquet row.
func TransformToParquetFinding(item digest.Item, runID string, exportTime time.Time) models.ParquetFinding {
	var due *int64
	if !item.DueDate.IsZero() {
		ms := item.DueDate.UnixMilli()
		due = &ms
	}

	return models.ParquetFinding{
		RunID:             runID,
		RecordID:          item.RecordID,
		Owner:             item.Owner,
		OwnerSource:       string(item.OwnerSource),
		OwnerEmail:        models.StringPtrOrNil(item.OwnerEmail),
		FindingName:       item.FindingName,
		RiskLevel:         item.RiskLevel,
		RemediationStatus: item.RemediationStatus,
		AssetName:         item.AssetName,
		InternetFacing:    item.InternetFacing,
		DateFound:         item.DateFound.UnixMilli(),
		DateSourceField:   string(item.DateSourceField),
		DueDate:           due,
		Overdue:           item.Overdue,
		ExportTimestamp:   exportTime.UnixMilli(),
	}
}
