package config

// StorageConfig defines configuration for run artifacts and run history
type StorageConfig struct {
	ExportParquet    bool   `json:"export_parquet" yaml:"export_parquet"`
	ParquetBasePath  string `json:"parquet_base_path,omitempty" yaml:"parquet_base_path,omitempty"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=none uncompressed snappy gzip zstd"`
	RecordHistory    bool   `json:"record_history" yaml:"record_history"`
	HistoryDBPath    string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		ExportParquet:    false,
		ParquetBasePath:  DefaultStorageParquetBasePath,
		CompressionCodec: DefaultStorageCompressionCodec,
		RecordHistory:    false,
		HistoryDBPath:    DefaultStorageHistoryDBPath,
	}
}
