package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/headerflow/types"
)

func intPtr(v int) *int { return &v }

// TestNormalize_AbsentPair verifies that a missing or partial pair falls
// back to the documented 2048x2048 default.
func TestNormalize_AbsentPair(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		req  Request
	}{
		{"both nil", Request{}},
		{"width only", Request{Width: intPtr(800)}},
		{"height only", Request{Height: intPtr(600)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.req)
			require.NoError(t, err)
			assert.Equal(t, Normalized{Width: 2048, Height: 2048}, got)
		})
	}
}

// TestNormalize_InvalidDimension verifies that zero or negative sides are
// rejected with INVALID_DIMENSION rather than silently corrected.
func TestNormalize_InvalidDimension(t *testing.T) {
	t.Parallel()

	for _, pair := range [][2]int{{0, 100}, {100, 0}, {-1, 100}, {100, -5}, {0, 0}} {
		_, err := NormalizePair(pair[0], pair[1])
		require.Error(t, err)
		assert.Equal(t, types.ErrInvalidDimension, types.GetErrorCode(err))
	}
}

// TestNormalize_InBounds verifies that already-valid pairs pass through
// untouched.
func TestNormalize_InBounds(t *testing.T) {
	t.Parallel()

	for _, pair := range [][2]int{
		{2048, 2048},
		{2848, 1212},
		{1024, 1024},
		{4096, 4096},
		{3000, 1000}, // ratio exactly 3
		{1000, 3000}, // ratio exactly 1/3
	} {
		got, err := NormalizePair(pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, Normalized{Width: pair[0], Height: pair[1]}, got)
	}
}

// TestNormalize_AreaUnderflow verifies proportional upscaling to the area
// floor: the requested ratio survives and the corrected area clears MinArea.
func TestNormalize_AreaUnderflow(t *testing.T) {
	t.Parallel()

	got, err := NormalizePair(500, 500)
	require.NoError(t, err)
	assert.Equal(t, Normalized{Width: 1024, Height: 1024}, got)

	got, err = NormalizePair(800, 400)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Area(), MinArea)
	assert.InDelta(t, 2.0, got.Ratio(), 0.01)
}

// TestNormalize_AreaOverflow verifies proportional downscaling to the area
// ceiling.
func TestNormalize_AreaOverflow(t *testing.T) {
	t.Parallel()

	got, err := NormalizePair(8192, 8192)
	require.NoError(t, err)
	assert.Equal(t, Normalized{Width: 4096, Height: 4096}, got)

	got, err = NormalizePair(9000, 5000)
	require.NoError(t, err)
	assert.LessOrEqual(t, got.Area(), MaxArea)
	assert.InDelta(t, 1.8, got.Ratio(), 0.01)
}

// TestNormalize_RatioTooTall verifies that a too-tall pair keeps its width
// and lands at exactly 1/3, per the documented correction rule.
func TestNormalize_RatioTooTall(t *testing.T) {
	t.Parallel()

	got, err := NormalizePair(100, 100000)
	require.NoError(t, err)
	assert.Equal(t, Normalized{Width: 100, Height: 300}, got)
}

// TestNormalize_RatioTooWide verifies the symmetric rule: height is kept
// and width recomputed as height*3.
func TestNormalize_RatioTooWide(t *testing.T) {
	t.Parallel()

	got, err := NormalizePair(100000, 100)
	require.NoError(t, err)
	assert.Equal(t, Normalized{Width: 300, Height: 100}, got)
}

// TestNormalize_AreaThenRatio pins the tie-break order for simultaneous
// violations: the area pass runs first, then the ratio is re-evaluated
// against the rescaled pair.
func TestNormalize_AreaThenRatio(t *testing.T) {
	t.Parallel()

	// 100x2 violates both bounds. The area pass scales it to 7241x145;
	// the ratio pass then clamps width against the rescaled height.
	got, err := NormalizePair(100, 2)
	require.NoError(t, err)
	assert.Equal(t, got.Height*3, got.Width)
	assert.Greater(t, got.Height, 2)
}
