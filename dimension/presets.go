package dimension

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BaSui01/headerflow/types"
)

// Tier selects a resolution class for a named preset.
type Tier string

const (
	Tier1K Tier = "1k"
	Tier2K Tier = "2k"
	Tier4K Tier = "4k"
)

// DefaultTier is used when a preset is resolved without a tier, or with a
// tier the preset does not publish.
const DefaultTier = Tier2K

// Preset is a named, pre-validated dimension entry. Entries are constant
// data; every pair in the table satisfies the area and ratio bounds.
type Preset struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Ratio       string `json:"ratio"`
	Description string `json:"description"`
}

type family struct {
	ratio string
	desc  string
	tiers map[Tier]Normalized
}

// Tier values follow the vendor's published standard sizes for
// jimeng_t2i_v40. The vendor publishes no 1K sizes for the non-square
// ratios; those entries use the smallest pair of the same ratio whose area
// clears MinArea, so the whole table is valid without re-normalization.
var families = map[string]family{
	"square": {
		ratio: "1:1", desc: "正方形",
		tiers: map[Tier]Normalized{
			Tier1K: {1024, 1024},
			Tier2K: {2048, 2048},
			Tier4K: {4096, 4096},
		},
	},
	"four_three": {
		ratio: "4:3", desc: "传统照片比例",
		tiers: map[Tier]Normalized{
			Tier1K: {1184, 888},
			Tier2K: {2304, 1728},
			Tier4K: {4694, 3520},
		},
	},
	"three_two": {
		ratio: "3:2", desc: "经典相机比例",
		tiers: map[Tier]Normalized{
			Tier1K: {1260, 840},
			Tier2K: {2496, 1664},
			Tier4K: {4992, 3328},
		},
	},
	"sixteen_nine": {
		ratio: "16:9", desc: "宽屏比例",
		tiers: map[Tier]Normalized{
			Tier1K: {1376, 774},
			Tier2K: {2560, 1440},
			Tier4K: {5404, 3040},
		},
	},
	"twenty_one_nine": {
		ratio: "21:9", desc: "超宽屏比例",
		tiers: map[Tier]Normalized{
			Tier1K: {1575, 675},
			Tier2K: {3024, 1296},
			Tier4K: {6198, 2656},
		},
	},
	// 微信公众号头图标准比例（约 2.35:1）
	"wechat_header": {
		ratio: "2.35:1", desc: "微信头图标准",
		tiers: map[Tier]Normalized{
			Tier1K: {1570, 668},
			Tier2K: {2848, 1212},
			Tier4K: {5696, 2424},
		},
	},
}

// Resolve maps a preset name and tier to concrete dimensions. The name may
// be a bare family ("wechat_header") combined with the tier argument, or a
// full table key with an embedded tier ("square_1k"); an embedded tier wins
// over the argument. A known preset with an unknown tier falls back to
// DefaultTier. An unknown preset name is an error.
func Resolve(name string, tier Tier) (Normalized, error) {
	fam, ok := families[name]
	if !ok {
		if i := strings.LastIndex(name, "_"); i > 0 {
			if suffix := Tier(name[i+1:]); validTier(suffix) {
				if f, found := families[name[:i]]; found {
					fam, tier, ok = f, suffix, true
				}
			}
		}
	}
	if !ok {
		return Normalized{}, types.NewError(types.ErrUnknownPreset,
			fmt.Sprintf("unknown dimension preset %q", name))
	}

	dims, ok := fam.tiers[tier]
	if !ok {
		dims = fam.tiers[DefaultTier]
	}
	return dims, nil
}

// Presets enumerates the full table as flat entries ordered by name, for
// tool schemas and the presets resource.
func Presets() []Preset {
	out := make([]Preset, 0, len(families)*3)
	for name, fam := range families {
		for tier, dims := range fam.tiers {
			out = append(out, Preset{
				Name:        name + "_" + string(tier),
				Width:       dims.Width,
				Height:      dims.Height,
				Ratio:       fam.ratio,
				Description: strings.ToUpper(string(tier)) + " " + fam.desc,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the family names accepted by Resolve, sorted.
func Names() []string {
	out := make([]string, 0, len(families))
	for name := range families {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func validTier(t Tier) bool {
	switch t {
	case Tier1K, Tier2K, Tier4K:
		return true
	}
	return false
}
