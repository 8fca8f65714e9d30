package crop

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/BaSui01/headerflow/internal/tlsutil"
	"github.com/BaSui01/headerflow/types"
)

// Output formats supported by Smart.
const (
	FormatParams     = "params"     // 仅返回裁剪参数, 不下载图片
	FormatBase64     = "base64"     // 裁剪后编码为 data URI
	FormatCompressed = "compressed" // 裁剪后强压缩再编码, 适合预览
)

// Per-format downscale bound and JPEG quality.
var formatProfiles = map[string]struct {
	maxEdge int
	quality int
}{
	FormatBase64:     {800, 85},
	FormatCompressed: {600, 75},
}

// maxImageBytes caps the downloaded body. Generation output never comes
// close to this, so anything bigger is a broken or hostile URL.
const maxImageBytes = 32 << 20

// Result is the response of Smart.
type Result struct {
	OriginalURL    string  `json:"original_url"`
	ActualSize     string  `json:"actual_size"`
	Params         Params  `json:"crop_params"`
	CroppedSize    string  `json:"cropped_size"`
	TargetRatio    float64 `json:"target_ratio"`
	OutputFormat   string  `json:"output_format"`
	CropURL        string  `json:"crop_url,omitempty"`
	CroppedBase64  string  `json:"cropped_base64,omitempty"`
	Base64Length   int     `json:"base64_length,omitempty"`
	CompressedSize string  `json:"compressed_size,omitempty"`
	Usage          string  `json:"usage"`
}

// Cropper downloads generated images and crops them to a target ratio.
type Cropper struct {
	http   *http.Client
	logger *zap.Logger
}

// NewCropper builds a Cropper. A nil httpClient falls back to the hardened
// default client.
func NewCropper(httpClient *http.Client, logger *zap.Logger) *Cropper {
	if httpClient == nil {
		httpClient = tlsutil.SecureHTTPClient(30 * time.Second)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cropper{
		http:   httpClient,
		logger: logger.With(zap.String("component", "cropper")),
	}
}

// Smart 将 imageURL 指向的图片居中裁剪到 targetRatio。
//
// format 为 FormatParams 时只探测尺寸并返回裁剪窗口; FormatBase64 与
// FormatCompressed 会实际执行裁剪, 按需缩小尺寸后编码为 JPEG data URI。
func (c *Cropper) Smart(ctx context.Context, imageURL string, targetRatio float64, format string) (*Result, error) {
	if imageURL == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "image_url is required")
	}
	if targetRatio <= 0 {
		targetRatio = DefaultRatio
	}
	if format == "" {
		format = FormatParams
	}
	if _, ok := formatProfiles[format]; !ok && format != FormatParams {
		return nil, types.NewError(types.ErrInvalidRequest,
			fmt.Sprintf("unsupported output format %q", format))
	}

	img, err := c.fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	c.logger.Info("图片尺寸探测完成",
		zap.String("url", imageURL),
		zap.Int("width", width),
		zap.Int("height", height))

	params := Compute(width, height, targetRatio)
	result := &Result{
		OriginalURL:  imageURL,
		ActualSize:   fmt.Sprintf("%dx%d", width, height),
		Params:       params,
		CroppedSize:  fmt.Sprintf("%dx%d", params.Width, params.Height),
		TargetRatio:  targetRatio,
		OutputFormat: format,
	}

	if format == FormatParams {
		result.CropURL = fmt.Sprintf("%s#crop=%d,%d,%d,%d",
			imageURL, params.X, params.Y, params.Width, params.Height)
		result.Usage = "使用图片编辑软件按参数裁剪，或使用支持URL参数的图片服务"
		return result, nil
	}

	profile := formatProfiles[format]
	cropped := cropImage(img, params.Rect())
	cropped = downscale(cropped, profile.maxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: profile.quality}); err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to encode cropped image").WithCause(err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	result.CroppedBase64 = "data:image/jpeg;base64," + encoded
	result.Base64Length = len(encoded)
	switch format {
	case FormatBase64:
		result.Usage = "Base64编码图片，可直接使用（已压缩优化）"
	case FormatCompressed:
		cb := cropped.Bounds()
		result.CompressedSize = fmt.Sprintf("%dx%d", cb.Dx(), cb.Dy())
		result.Usage = "压缩版本Base64图片，适合快速预览和使用"
	}

	c.logger.Info("智能裁剪完成",
		zap.Int("width", params.Width),
		zap.Int("height", params.Height),
		zap.Float64("ratio", targetRatio),
		zap.String("format", format))
	return result, nil
}

// fetch downloads and decodes the image at url.
func (c *Cropper) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "invalid image URL").WithCause(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "failed to download image").
			WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("image download returned HTTP %d", resp.StatusCode)).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(resp.StatusCode >= 500)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "failed to decode image").WithCause(err)
	}
	return img, nil
}

// cropImage extracts rect from img into a fresh RGBA buffer.
func cropImage(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

// downscale shrinks img so that neither edge exceeds maxEdge, keeping the
// aspect ratio. Images already within bounds pass through untouched.
func downscale(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}
	scale := float64(maxEdge) / float64(w)
	if h > w {
		scale = float64(maxEdge) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
