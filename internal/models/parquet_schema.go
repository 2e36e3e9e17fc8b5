package models

// ParquetFinding defines the schema for exporting findings using parquet-go/parquet-go.
// Optional fields use pointers and the ',optional' tag.
type ParquetFinding struct {
	RunID             string  `parquet:"run_id"`
	RecordID          string  `parquet:"record_id"`
	Owner             string  `parquet:"owner"`
	OwnerSource       string  `parquet:"owner_source"`
	OwnerEmail        *string `parquet:"owner_email,optional"`
	FindingName       string  `parquet:"finding_name"`
	RiskLevel         string  `parquet:"risk_level"`
	RemediationStatus string  `parquet:"remediation_status"`
	AssetName         string  `parquet:"asset_name"`
	InternetFacing    string  `parquet:"internet_facing"`
	DateFound         int64   `parquet:"date_found"` // Unix milliseconds, UTC midnight
	DateSourceField   string  `parquet:"date_source_field"`
	DueDate           *int64  `parquet:"due_date,optional"`
	Overdue           bool    `parquet:"overdue"`
	ExportTimestamp   int64   `parquet:"export_timestamp"`
}
