package config

// ExtractorConfig defines configuration for the finding extractor
type ExtractorConfig struct {
	// Memoise facing and email lookups for the duration of one extraction run.
	CacheLookups    bool `json:"cache_lookups" yaml:"cache_lookups"`
	LookupCacheSize int  `json:"lookup_cache_size,omitempty" yaml:"lookup_cache_size,omitempty" validate:"omitempty,min=1"`
	// Abort the run when the user directory has no match for an owner.
	FailOnMissingEmail bool `json:"fail_on_missing_email" yaml:"fail_on_missing_email"`
}

// NewDefaultExtractorConfig creates default extractor configuration
func NewDefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		CacheLookups:       DefaultExtractorCacheLookups,
		LookupCacheSize:    DefaultExtractorLookupCacheSize,
		FailOnMissingEmail: DefaultExtractorFailOnMissingMail,
	}
}
