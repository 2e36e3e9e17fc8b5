package config

// RegisterConfig describes how to reach the upstream GRC register API.
type RegisterConfig struct {
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"required,url"`
	// Credentials for HTTP basic auth. Usually injected from the environment.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	FindingsRegisterID int    `json:"findings_register_id,omitempty" yaml:"findings_register_id,omitempty" validate:"min=1"`
	StatusColumnKey    string `json:"status_column_key,omitempty" yaml:"status_column_key,omitempty" validate:"required"`
	StatusFilterValue  string `json:"status_filter_value,omitempty" yaml:"status_filter_value,omitempty" validate:"required"`
	PageSize           int    `json:"page_size,omitempty" yaml:"page_size,omitempty" validate:"min=1,max=500"`

	AssetsRegisterID   int    `json:"assets_register_id,omitempty" yaml:"assets_register_id,omitempty" validate:"min=1"`
	AssetNameColumnKey string `json:"asset_name_column_key,omitempty" yaml:"asset_name_column_key,omitempty" validate:"required"`

	TimeoutSecs        int  `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1"`
	InsecureSkipVerify bool `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	FollowRedirects    bool `json:"follow_redirects" yaml:"follow_redirects"`
	EnableHTTP2        bool `json:"enable_http2" yaml:"enable_http2"`

	// Proxy is an optional http(s) or socks5 proxy URL for register calls
	Proxy             string `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	UserAgent         string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	MaxResponseSizeMB int    `json:"max_response_size_mb,omitempty" yaml:"max_response_size_mb,omitempty" validate:"min=0"`
}

// NewDefaultRegisterConfig creates default register configuration
func NewDefaultRegisterConfig() RegisterConfig {
	return RegisterConfig{
		BaseURL:            DefaultRegisterBaseURL,
		FindingsRegisterID: DefaultRegisterFindingsRegisterID,
		StatusColumnKey:    DefaultRegisterStatusColumnKey,
		StatusFilterValue:  DefaultRegisterStatusFilterValue,
		PageSize:           DefaultRegisterPageSize,
		AssetsRegisterID:   DefaultRegisterAssetsRegisterID,
		AssetNameColumnKey: DefaultRegisterAssetNameColumnKey,
		TimeoutSecs:        DefaultRegisterTimeoutSecs,
		InsecureSkipVerify: false,
		FollowRedirects:    true,
		EnableHTTP2:        true,
		UserAgent:          DefaultRegisterUserAgent,
		MaxResponseSizeMB:  DefaultRegisterMaxResponseSizeMB,
	}
}
