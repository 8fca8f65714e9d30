// =============================================================================
// 📦 Headerflow 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("HEADERFLOW").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/headerflow/jimeng"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 Headerflow 的完整配置结构
type Config struct {
	// Server 服务器配置
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Jimeng 即梦图像生成 API 配置
	Jimeng JimengConfig `yaml:"jimeng" env:"JIMENG"`

	// Generation 生成行为配置
	Generation GenerationConfig `yaml:"generation" env:"GENERATION"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// 传输模式: stdio, websocket
	Mode string `yaml:"mode" env:"MODE"`
	// WebSocket 监听地址 (websocket 模式)
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	// Metrics/健康检查监听地址, 为空时不启动
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
	// 单次工具调用超时
	CallTimeout time.Duration `yaml:"call_timeout" env:"CALL_TIMEOUT"`
	// 优雅关闭超时
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// JimengConfig 即梦 API 配置
type JimengConfig struct {
	// Volcengine Access Key
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	// Volcengine Secret Key
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	// API 主机名
	Host string `yaml:"host" env:"HOST"`
	// 签名区域
	Region string `yaml:"region" env:"REGION"`
	// 模型请求键
	ReqKey string `yaml:"req_key" env:"REQ_KEY"`
	// 单次 HTTP 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 任务轮询间隔
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// 生成任务最长等待
	MaxWait time.Duration `yaml:"max_wait" env:"MAX_WAIT"`
	// 出站限速 (每秒请求数)
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	// 限速突发容量
	Burst int `yaml:"burst" env:"BURST"`
	// 完成任务结果缓存时长
	ResultCacheTTL time.Duration `yaml:"result_cache_ttl" env:"RESULT_CACHE_TTL"`
}

// GenerationConfig 生成行为配置
type GenerationConfig struct {
	// 缺省分辨率档位: 1k, 2k, 4k
	DefaultTier string `yaml:"default_tier" env:"DEFAULT_TIER"`
	// 是否启用提示词自动优化
	OptimizePrompts bool `yaml:"optimize_prompts" env:"OPTIMIZE_PROMPTS"`
	// 裁剪下载图片的 HTTP 超时
	CropTimeout time.Duration `yaml:"crop_timeout" env:"CROP_TIMEOUT"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// ClientConfig 把配置映射成即梦客户端配置
func (j *JimengConfig) ClientConfig() jimeng.Config {
	return jimeng.Config{
		AccessKey:         j.AccessKey,
		SecretKey:         j.SecretKey,
		Host:              j.Host,
		Region:            j.Region,
		ReqKey:            j.ReqKey,
		Timeout:           j.Timeout,
		PollInterval:      j.PollInterval,
		MaxWait:           j.MaxWait,
		RequestsPerSecond: j.RequestsPerSecond,
		Burst:             j.Burst,
		ResultCacheTTL:    j.ResultCacheTTL,
	}
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "HEADERFLOW",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量
func (l *Loader) Load() (*Config, error) {
	// 1. 从默认值开始
	cfg := DefaultConfig()

	// 2. 如果指定了配置文件，从文件加载
	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// 3. 从环境变量覆盖
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Volcengine 官方 SDK 变量兼容: 仍未配置密钥时回退读取
	// VOLC_ACCESSKEY / VOLC_SECRETKEY
	if cfg.Jimeng.AccessKey == "" {
		cfg.Jimeng.AccessKey = os.Getenv("VOLC_ACCESSKEY")
	}
	if cfg.Jimeng.SecretKey == "" {
		cfg.Jimeng.SecretKey = os.Getenv("VOLC_SECRETKEY")
	}

	// 4. 运行验证器
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		// 如果是结构体，递归处理
		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔍 辅助函数
// =============================================================================

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv 仅从环境变量加载配置
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	switch c.Server.Mode {
	case "stdio", "websocket":
	default:
		errs = append(errs, fmt.Sprintf("unknown server mode %q", c.Server.Mode))
	}
	if c.Server.Mode == "websocket" && c.Server.ListenAddr == "" {
		errs = append(errs, "listen_addr is required in websocket mode")
	}

	if c.Jimeng.AccessKey == "" || c.Jimeng.SecretKey == "" {
		errs = append(errs, "jimeng access_key and secret_key are required")
	}
	if c.Jimeng.PollInterval <= 0 {
		errs = append(errs, "poll_interval must be positive")
	}
	if c.Jimeng.MaxWait < c.Jimeng.PollInterval {
		errs = append(errs, "max_wait must be at least poll_interval")
	}

	switch c.Generation.DefaultTier {
	case "1k", "2k", "4k":
	default:
		errs = append(errs, fmt.Sprintf("unknown default tier %q", c.Generation.DefaultTier))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
