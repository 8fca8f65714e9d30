package crop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestComputeWideImage 过宽的图片收窄宽度并水平居中
func TestComputeWideImage(t *testing.T) {
	p := Compute(4000, 1000, 2.35)
	assert.Equal(t, 2350, p.Width)
	assert.Equal(t, 1000, p.Height)
	assert.Equal(t, (4000-2350)/2, p.X)
	assert.Equal(t, 0, p.Y)
	assert.True(t, p.CropNeeded)
}

// TestComputeTallImage 过高的图片收窄高度并垂直居中
func TestComputeTallImage(t *testing.T) {
	p := Compute(2048, 2048, 2.35)
	ratio := 2.35
	wantHeight := int(2048 / ratio)
	assert.Equal(t, 2048, p.Width)
	assert.Equal(t, wantHeight, p.Height)
	assert.Equal(t, 0, p.X)
	assert.Equal(t, (2048-wantHeight)/2, p.Y)
}

// TestComputeExactRatio 已是目标比例时窗口覆盖整图
func TestComputeExactRatio(t *testing.T) {
	p := Compute(2350, 1000, 2.35)
	assert.Equal(t, 2350, p.Width)
	assert.Equal(t, 1000, p.Height)
	assert.Equal(t, 0, p.X)
	assert.Equal(t, 0, p.Y)
}

// TestComputeDefaultRatio 非法比例回退到微信头图标准比例
func TestComputeDefaultRatio(t *testing.T) {
	p := Compute(4000, 1000, 0)
	assert.Equal(t, int(1000*DefaultRatio), p.Width)
}

// TestParamsRect 窗口与 image.Rectangle 的换算一致
func TestParamsRect(t *testing.T) {
	p := Params{X: 10, Y: 20, Width: 100, Height: 50}
	r := p.Rect()
	assert.Equal(t, 10, r.Min.X)
	assert.Equal(t, 20, r.Min.Y)
	assert.Equal(t, 100, r.Dx())
	assert.Equal(t, 50, r.Dy())
}
