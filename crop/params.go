package crop

import "image"

// DefaultRatio 微信公众号头图的标准宽高比。
const DefaultRatio = 2.35

// Params describes a centered crop window inside an image.
type Params struct {
	X          int  `json:"x"`
	Y          int  `json:"y"`
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	CropNeeded bool `json:"crop_needed"`
}

// Rect returns the crop window as an image.Rectangle.
func (p Params) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Compute 计算把 width x height 的图片居中裁剪到 targetRatio 所需的窗口。
// 图片过宽时收窄宽度, 过高时收窄高度, 另一条边保持不变。
func Compute(width, height int, targetRatio float64) Params {
	if targetRatio <= 0 {
		targetRatio = DefaultRatio
	}
	if float64(width)/float64(height) >= targetRatio {
		newWidth := int(float64(height) * targetRatio)
		return Params{
			X:          (width - newWidth) / 2,
			Y:          0,
			Width:      newWidth,
			Height:     height,
			CropNeeded: true,
		}
	}
	newHeight := int(float64(width) / targetRatio)
	return Params{
		X:          0,
		Y:          (height - newHeight) / 2,
		Width:      width,
		Height:     newHeight,
		CropNeeded: true,
	}
}
