package jimeng

import "time"

// Config configures the Volcengine Jimeng text-to-image client.
type Config struct {
	AccessKey string        `json:"access_key" yaml:"access_key"`
	SecretKey string        `json:"secret_key" yaml:"secret_key"`
	Host      string        `json:"host,omitempty" yaml:"host,omitempty"`
	Endpoint  string        `json:"endpoint,omitempty" yaml:"endpoint,omitempty"` // full base URL override; defaults to https://<host>

	Region    string        `json:"region,omitempty" yaml:"region,omitempty"`
	ReqKey    string        `json:"req_key,omitempty" yaml:"req_key,omitempty"` // jimeng_t2i_v40
	Timeout   time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Polling behaviour for Generate.
	PollInterval time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	MaxWait      time.Duration `json:"max_wait,omitempty" yaml:"max_wait,omitempty"`

	// Outbound rate limit towards the vendor API.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	Burst             int     `json:"burst,omitempty" yaml:"burst,omitempty"`

	// Completed task results are cached this long so repeated result
	// queries for a finished task do not re-hit the vendor.
	ResultCacheTTL time.Duration `json:"result_cache_ttl,omitempty" yaml:"result_cache_ttl,omitempty"`
}

// DefaultConfig returns the default Jimeng client configuration.
// Credentials always come from the caller (config file or VOLC_ACCESSKEY /
// VOLC_SECRETKEY environment variables).
func DefaultConfig() Config {
	return Config{
		Host:              "visual.volcengineapi.com",
		Region:            "cn-north-1",
		ReqKey:            "jimeng_t2i_v40",
		Timeout:           30 * time.Second,
		PollInterval:      5 * time.Second,
		MaxWait:           120 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
		ResultCacheTTL:    10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Host == "" {
		c.Host = def.Host
	}
	if c.Region == "" {
		c.Region = def.Region
	}
	if c.ReqKey == "" {
		c.ReqKey = def.ReqKey
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}
	if c.MaxWait == 0 {
		c.MaxWait = def.MaxWait
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = def.RequestsPerSecond
	}
	if c.Burst == 0 {
		c.Burst = def.Burst
	}
	if c.ResultCacheTTL == 0 {
		c.ResultCacheTTL = def.ResultCacheTTL
	}
	return c
}
