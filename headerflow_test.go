package headerflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/headerflow/config"
)

// TestNewAssemblesFullServer 门面一次装配出带全部工具的服务器。
// 指标采集器挂在全局 Prometheus 注册表上, 所以整个测试进程只装配一次。
func TestNewAssemblesFullServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Jimeng.AccessKey = "test-ak"
	cfg.Jimeng.SecretKey = "test-sk"

	srv, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	tools, err := srv.ListTools(context.Background())
	require.NoError(t, err)
	assert.Len(t, tools, 6)

	info := srv.GetServerInfo()
	assert.Equal(t, "headerflow", info.Name)
	assert.Equal(t, Version, info.Version)
}
