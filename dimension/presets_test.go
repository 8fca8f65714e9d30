package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/headerflow/types"
)

// TestPresets_AllEntriesWithinBounds verifies the table invariant: every
// preset pair independently satisfies the area and ratio bounds, so Resolve
// never has to re-normalize.
func TestPresets_AllEntriesWithinBounds(t *testing.T) {
	t.Parallel()

	entries := Presets()
	require.NotEmpty(t, entries)

	for _, p := range entries {
		dims := Normalized{Width: p.Width, Height: p.Height}
		assert.GreaterOrEqual(t, dims.Area(), MinArea, "preset %s area too small", p.Name)
		assert.LessOrEqual(t, dims.Area(), MaxArea, "preset %s area too large", p.Name)
		assert.GreaterOrEqual(t, dims.Ratio(), MinRatio, "preset %s too tall", p.Name)
		assert.LessOrEqual(t, dims.Ratio(), MaxRatio, "preset %s too wide", p.Name)
	}
}

// TestPresets_CoversAllTiers verifies every family publishes all three
// resolution tiers.
func TestPresets_CoversAllTiers(t *testing.T) {
	t.Parallel()

	assert.Len(t, Presets(), len(Names())*3)
	for _, name := range Names() {
		for _, tier := range []Tier{Tier1K, Tier2K, Tier4K} {
			_, err := Resolve(name, tier)
			require.NoError(t, err, "%s_%s", name, tier)
		}
	}
}

// TestResolve_KnownPresets pins the concrete dimensions of lookups the tool
// layer depends on.
func TestResolve_KnownPresets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		tier Tier
		want Normalized
	}{
		{"square_1k", "", Normalized{1024, 1024}},
		{"square", Tier4K, Normalized{4096, 4096}},
		{"wechat_header", Tier2K, Normalized{2848, 1212}},
		{"wechat_header", "", Normalized{2848, 1212}},     // default tier
		{"wechat_header", Tier("8k"), Normalized{2848, 1212}}, // unknown tier falls back
		{"sixteen_nine_2k", "", Normalized{2560, 1440}},
		{"twenty_one_nine", Tier2K, Normalized{3024, 1296}},
	}

	for _, tc := range cases {
		got, err := Resolve(tc.name, tc.tier)
		require.NoError(t, err, "%s/%s", tc.name, tc.tier)
		assert.Equal(t, tc.want, got, "%s/%s", tc.name, tc.tier)
	}
}

// TestResolve_EmbeddedTierWins verifies that a tier suffix embedded in the
// preset name takes precedence over the tier argument.
func TestResolve_EmbeddedTierWins(t *testing.T) {
	t.Parallel()

	got, err := Resolve("square_1k", Tier4K)
	require.NoError(t, err)
	assert.Equal(t, Normalized{1024, 1024}, got)
}

// TestResolve_UnknownPreset verifies the UNKNOWN_PRESET error surface.
func TestResolve_UnknownPreset(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"nonexistent", "", "square_9k", "header_wechat"} {
		_, err := Resolve(name, Tier2K)
		require.Error(t, err, "name=%q", name)
		assert.Equal(t, types.ErrUnknownPreset, types.GetErrorCode(err))
	}
}

// TestPresets_WeChatHeaderRatio verifies the WeChat header family stays at
// its published 2.35:1 shape across tiers.
func TestPresets_WeChatHeaderRatio(t *testing.T) {
	t.Parallel()

	for _, tier := range []Tier{Tier1K, Tier2K, Tier4K} {
		dims, err := Resolve("wechat_header", tier)
		require.NoError(t, err)
		assert.InDelta(t, 2.35, dims.Ratio(), 0.01, "tier %s", tier)
	}
}
