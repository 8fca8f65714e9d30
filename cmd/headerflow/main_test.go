package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestRunCheckValidConfig 凭证与配置齐全时 check 正常返回（失败路径会直接退出进程）
func TestRunCheckValidConfig(t *testing.T) {
	t.Setenv("HEADERFLOW_JIMENG_ACCESS_KEY", "test-ak")
	t.Setenv("HEADERFLOW_JIMENG_SECRET_KEY", "test-sk")

	runCheck(nil)
}

// TestRunCheckWithConfigFile check 读取指定配置文件
func TestRunCheckWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	yamlContent := "jimeng:\n  access_key: file-ak\n  secret_key: file-sk\n"
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o600); err != nil {
		t.Fatal(err)
	}

	runCheck([]string{"--config", configPath})
}
