// =============================================================================
// 📦 Headerflow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		Jimeng:     DefaultJimengConfig(),
		Generation: DefaultGenerationConfig(),
		Log:        DefaultLogConfig(),
		Telemetry:  DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Mode:            "stdio",
		ListenAddr:      "127.0.0.1:8192",
		MetricsAddr:     "",
		CallTimeout:     3 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultJimengConfig 返回默认即梦 API 配置
func DefaultJimengConfig() JimengConfig {
	return JimengConfig{
		Host:              "visual.volcengineapi.com",
		Region:            "cn-north-1",
		ReqKey:            "jimeng_t2i_v40",
		Timeout:           30 * time.Second,
		PollInterval:      5 * time.Second,
		MaxWait:           2 * time.Minute,
		RequestsPerSecond: 2,
		Burst:             4,
		ResultCacheTTL:    10 * time.Minute,
	}
}

// DefaultGenerationConfig 返回默认生成行为配置
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		DefaultTier:     "2k",
		OptimizePrompts: true,
		CropTimeout:     30 * time.Second,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "headerflow",
		SampleRate:   1.0,
	}
}
