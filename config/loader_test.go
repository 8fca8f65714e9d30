// 配置加载器与默认配置测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- 默认配置测试 ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// 验证服务器默认值
	assert.Equal(t, "stdio", cfg.Server.Mode)
	assert.Equal(t, 3*time.Minute, cfg.Server.CallTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)

	// 验证即梦默认值
	assert.Equal(t, "visual.volcengineapi.com", cfg.Jimeng.Host)
	assert.Equal(t, "cn-north-1", cfg.Jimeng.Region)
	assert.Equal(t, "jimeng_t2i_v40", cfg.Jimeng.ReqKey)
	assert.Equal(t, 5*time.Second, cfg.Jimeng.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.Jimeng.MaxWait)

	// 验证生成默认值
	assert.Equal(t, "2k", cfg.Generation.DefaultTier)
	assert.True(t, cfg.Generation.OptimizePrompts)

	// 验证 Log 默认值
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)

	// 验证遥测默认值
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "headerflow", cfg.Telemetry.ServiceName)
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	// 不指定配置文件，应该返回默认值
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "stdio", cfg.Server.Mode)
	assert.Equal(t, "visual.volcengineapi.com", cfg.Jimeng.Host)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	// 创建临时配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  mode: websocket
  listen_addr: "0.0.0.0:9000"
  call_timeout: 5m

jimeng:
  access_key: "file-ak"
  secret_key: "file-sk"
  poll_interval: 2s
  max_wait: 30s

generation:
  default_tier: "4k"
  optimize_prompts: false

log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o600))

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, "websocket", cfg.Server.Mode)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.ListenAddr)
	assert.Equal(t, 5*time.Minute, cfg.Server.CallTimeout)
	assert.Equal(t, "file-ak", cfg.Jimeng.AccessKey)
	assert.Equal(t, 2*time.Second, cfg.Jimeng.PollInterval)
	assert.Equal(t, "4k", cfg.Generation.DefaultTier)
	assert.False(t, cfg.Generation.OptimizePrompts)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 文件未覆盖的字段保持默认
	assert.Equal(t, "visual.volcengineapi.com", cfg.Jimeng.Host)
}

func TestLoader_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, "stdio", cfg.Server.Mode)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("jimeng:\n  access_key: from-file\n"), 0o600))

	t.Setenv("HEADERFLOW_JIMENG_ACCESS_KEY", "from-env")
	t.Setenv("HEADERFLOW_JIMENG_POLL_INTERVAL", "7s")
	t.Setenv("HEADERFLOW_SERVER_MODE", "websocket")
	t.Setenv("HEADERFLOW_GENERATION_OPTIMIZE_PROMPTS", "false")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Jimeng.AccessKey)
	assert.Equal(t, 7*time.Second, cfg.Jimeng.PollInterval)
	assert.Equal(t, "websocket", cfg.Server.Mode)
	assert.False(t, cfg.Generation.OptimizePrompts)
}

func TestLoader_VolcEnvFallback(t *testing.T) {
	t.Setenv("VOLC_ACCESSKEY", "volc-ak")
	t.Setenv("VOLC_SECRETKEY", "volc-sk")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "volc-ak", cfg.Jimeng.AccessKey)
	assert.Equal(t, "volc-sk", cfg.Jimeng.SecretKey)
}

func TestLoader_VolcEnvDoesNotOverride(t *testing.T) {
	// 专属变量优先, VOLC_* 只在密钥缺失时兜底
	t.Setenv("HEADERFLOW_JIMENG_ACCESS_KEY", "own-ak")
	t.Setenv("VOLC_ACCESSKEY", "volc-ak")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "own-ak", cfg.Jimeng.AccessKey)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("HF_JIMENG_SECRET_KEY", "prefixed-sk")

	cfg, err := NewLoader().WithEnvPrefix("HF").Load()
	require.NoError(t, err)
	assert.Equal(t, "prefixed-sk", cfg.Jimeng.SecretKey)
}

func TestLoader_ValidatorRuns(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	// 默认配置没有密钥, 校验必然失败
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_key")
}

// --- Validate 测试 ---

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Jimeng.AccessKey = "ak"
	valid.Jimeng.SecretKey = "sk"
	require.NoError(t, valid.Validate())

	badMode := DefaultConfig()
	badMode.Jimeng.AccessKey = "ak"
	badMode.Jimeng.SecretKey = "sk"
	badMode.Server.Mode = "grpc"
	assert.ErrorContains(t, badMode.Validate(), "unknown server mode")

	noListen := DefaultConfig()
	noListen.Jimeng.AccessKey = "ak"
	noListen.Jimeng.SecretKey = "sk"
	noListen.Server.Mode = "websocket"
	noListen.Server.ListenAddr = ""
	assert.ErrorContains(t, noListen.Validate(), "listen_addr")

	badTier := DefaultConfig()
	badTier.Jimeng.AccessKey = "ak"
	badTier.Jimeng.SecretKey = "sk"
	badTier.Generation.DefaultTier = "8k"
	assert.ErrorContains(t, badTier.Validate(), "unknown default tier")

	badWait := DefaultConfig()
	badWait.Jimeng.AccessKey = "ak"
	badWait.Jimeng.SecretKey = "sk"
	badWait.Jimeng.MaxWait = time.Second
	assert.ErrorContains(t, badWait.Validate(), "max_wait")
}

// --- ClientConfig 映射测试 ---

func TestJimengClientConfigMapping(t *testing.T) {
	jc := DefaultJimengConfig()
	jc.AccessKey = "ak"
	jc.SecretKey = "sk"

	cc := jc.ClientConfig()
	assert.Equal(t, "ak", cc.AccessKey)
	assert.Equal(t, jc.Host, cc.Host)
	assert.Equal(t, jc.PollInterval, cc.PollInterval)
	assert.Equal(t, jc.ResultCacheTTL, cc.ResultCacheTTL)
}
