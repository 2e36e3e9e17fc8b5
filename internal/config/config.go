package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"gopkg.in/yaml.v3"
)

const (
	// Register Defaults
	DefaultRegisterBaseURL            = "https://ermgov.protecht.com.au/unswcybergov/rest"
	DefaultRegisterFindingsRegisterID = 7246
	DefaultRegisterStatusColumnKey    = "col_135040"
	DefaultRegisterStatusFilterValue  = "Open"
	DefaultRegisterPageSize           = 50
	DefaultRegisterAssetsRegisterID   = 935
	DefaultRegisterAssetNameColumnKey = "col_113150"
	DefaultRegisterTimeoutSecs        = 30
	DefaultRegisterUserAgent          = "grcdigest/1.0"
	DefaultRegisterMaxResponseSizeMB  = 64

	// Extractor Defaults
	DefaultExtractorCacheLookups      = true
	DefaultExtractorLookupCacheSize   = 1024
	DefaultExtractorFailOnMissingMail = false

	// Server Defaults
	DefaultServerListenAddress    = ":8080"
	DefaultServerAuthHeader       = "auth"
	DefaultServerReadTimeoutSecs  = 15
	DefaultServerWriteTimeoutSecs = 600

	// Storage Defaults
	DefaultStorageParquetBasePath  = "database"
	DefaultStorageHistoryDBPath    = "database/history/run_history.db"
	DefaultStorageCompressionCodec = "zstd"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	maxConfigFileSize = 10 * 1024 * 1024
)

// GlobalConfig is the root configuration document.
type GlobalConfig struct {
	ExtractorConfig    ExtractorConfig    `json:"extractor_config,omitempty" yaml:"extractor_config,omitempty"`
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	Mode               string             `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,mode"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	RegisterConfig     RegisterConfig     `json:"register_config,omitempty" yaml:"register_config,omitempty"`
	ServerConfig       ServerConfig       `json:"server_config,omitempty" yaml:"server_config,omitempty"`
	StorageConfig      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ExtractorConfig:    NewDefaultExtractorConfig(),
		LogConfig:          NewDefaultLogConfig(),
		Mode:               "onetime",
		NotificationConfig: NewDefaultNotificationConfig(),
		RegisterConfig:     NewDefaultRegisterConfig(),
		ServerConfig:       NewDefaultServerConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is preferred if the file extension is .yaml or .yml.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
		}
		return cfg, nil
	}

	data, err := loadConfigFileContent(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

func loadConfigFileContent(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, errorwrapper.NewValidationError("config_file", filePath, "config file exceeds 10MB")
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
