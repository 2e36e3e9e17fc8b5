package config

// ServerConfig defines configuration for the HTTP entry point
type ServerConfig struct {
	ListenAddress    string `json:"listen_address,omitempty" yaml:"listen_address,omitempty" validate:"required"`
	AuthHeader       string `json:"auth_header,omitempty" yaml:"auth_header,omitempty" validate:"required"`
	AuthToken        string `json:"auth_token,omitempty" yaml:"auth_token,omitempty"`
	ReadTimeoutSecs  int    `json:"read_timeout_secs,omitempty" yaml:"read_timeout_secs,omitempty" validate:"omitempty,min=1"`
	WriteTimeoutSecs int    `json:"write_timeout_secs,omitempty" yaml:"write_timeout_secs,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultServerConfig creates default server configuration
func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddress:    DefaultServerListenAddress,
		AuthHeader:       DefaultServerAuthHeader,
		ReadTimeoutSecs:  DefaultServerReadTimeoutSecs,
		WriteTimeoutSecs: DefaultServerWriteTimeoutSecs,
	}
}
