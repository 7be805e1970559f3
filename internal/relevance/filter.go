// Package relevance scores marketplace search results against the product a
// user asked about, so that accessory listings and competing-brand products
// can be filtered out before prices are compared.
package relevance

import (
	"strings"
	"unicode"
)

// Config holds the tunable scoring constants. The defaults were chosen
// empirically against real marketplace result sets; treat them as opaque.
type Config struct {
	MinScore             float64 // relevance threshold for IsRelevant
	AccessoryPenalty     float64 // multiplier applied to accessory listings
	BrandConflictPenalty float64 // multiplier applied on competing-brand hits
}

// DefaultConfig returns the standard scoring constants.
func DefaultConfig() Config {
	return Config{
		MinScore:             0.65,
		AccessoryPenalty:     0.3,
		BrandConflictPenalty: 0.1,
	}
}

// accessoryKeywords marks listings for peripherals and consumables (cases,
// cables, chargers, ...) that share most of their title with the primary
// product. Both Traditional Chinese and Latin-script terms are checked.
var accessoryKeywords = []string{
	// zh
	"保護套", "保護殼", "手機殼", "螢幕保護貼", "保護貼", "鋼化膜",
	"充電器", "充電線", "傳輸線", "轉接頭", "轉接器",
	"耳機套", "耳機殼", "耳機塞", "耳塞", "海綿套",
	"支架", "車架", "桌架", "手機架",
	"貼紙", "裝飾貼", "彩繪", "背貼",
	"清潔", "清潔劑", "清潔布", "拭鏡布",
	"配件包", "組合包", "套裝",
	"維修", "更換", "零件", "適用於", "相容",
	// en
	"case", "cover", "protector", "screen", "tempered", "glass",
	"charger", "cable", "cord", "adapter", "usb",
	"tips", "foam", "silicone", "rubber",
	"stand", "holder", "mount", "dock",
	"skin", "decal", "sticker",
	"cleaning", "cleaner", "cloth",
	"kit", "bundle", "package",
	"replacement", "spare", "repair", "compatible", "for",
}

// brandExclusions maps a canonical product keyword to brand keywords that
// indicate a competing product rather than the one asked for.
var brandExclusions = map[string][]string{
	"iphone":  {"samsung", "xiaomi", "oppo", "vivo", "huawei", "sony", "htc"},
	"ps5":     {"xbox", "switch", "nintendo", "pc"},
	"airpods": {"sony", "bose", "sennheiser", "jbl", "beats"},
	"macbook": {"dell", "hp", "asus", "acer", "lenovo", "msi"},
	"viper":   {"logitech", "steelseries", "corsair", "roccat"},
}

// Filter decides whether a candidate listing names the same product as a
// target query. Safe for concurrent use.
type Filter struct {
	cfg Config
}

func New(cfg Config) *Filter {
	if cfg.MinScore <= 0 {
		cfg.MinScore = DefaultConfig().MinScore
	}
	if cfg.AccessoryPenalty <= 0 {
		cfg.AccessoryPenalty = DefaultConfig().AccessoryPenalty
	}
	if cfg.BrandConflictPenalty <= 0 {
		cfg.BrandConflictPenalty = DefaultConfig().BrandConflictPenalty
	}
	return &Filter{cfg: cfg}
}

// Config returns the scoring constants in effect.
func (f *Filter) Config() Config { return f.cfg }

// IsAccessory reports whether the listing name contains any accessory keyword.
func (f *Filter) IsAccessory(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range accessoryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// HasBrandConflict reports whether the candidate names a competing brand for a
// brand-specific target query. Targets outside the known product families
// never conflict.
func (f *Filter) HasBrandConflict(candidate, target string) bool {
	candLower := strings.ToLower(candidate)
	targetLower := strings.ToLower(target)

	var conflicting []string
	for brand, competitors := range brandExclusions {
		if strings.Contains(targetLower, brand) {
			conflicting = competitors
			break
		}
	}
	if conflicting == nil {
		return false
	}

	for _, brand := range conflicting {
		if strings.Contains(candLower, brand) {
			return true
		}
	}
	return false
}

// Score computes a 0-1 confidence that candidate names the same product as
// target. Substring containment gives a 0.8 base, otherwise a sequence
// similarity ratio is used; a token-overlap score (scaled by 0.7) replaces the
// base when higher. Accessory and brand-conflict penalties are multiplicative.
func (f *Filter) Score(candidate, target string) float64 {
	score := f.textScore(candidate, target)
	if f.IsAccessory(candidate) {
		score *= f.cfg.AccessoryPenalty
	}
	return score
}

// textScore is the similarity before accessory weighting. Brand conflicts are
// still penalized here: a Samsung listing never names an iPhone, accessory or
// not.
func (f *Filter) textScore(candidate, target string) float64 {
	candClean := normalize(candidate)
	targetClean := normalize(target)

	var score float64
	if targetClean != "" && strings.Contains(candClean, targetClean) {
		score = 0.8
	} else {
		score = matchRatio(candClean, targetClean)
	}

	targetWords := strings.Fields(targetClean)
	if len(targetWords) > 0 {
		candWords := make(map[string]bool)
		for _, w := range strings.Fields(candClean) {
			candWords[w] = true
		}
		overlap := 0
		for _, w := range targetWords {
			if candWords[w] {
				overlap++
			}
		}
		keywordScore := float64(overlap) / float64(len(targetWords)) * 0.7
		if keywordScore > score {
			score = keywordScore
		}
	}

	if f.HasBrandConflict(candidate, target) {
		score *= f.cfg.BrandConflictPenalty
	}

	return score
}

// IsRelevant reports whether candidate should be kept for target. Accessory
// listings are rejected outright when accessories are disallowed, regardless
// of textual similarity; when allowed they are judged on text similarity
// alone so the accessory penalty does not also bar them.
func (f *Filter) IsRelevant(candidate, target string, minScore float64, allowAccessories bool) bool {
	if minScore <= 0 {
		minScore = f.cfg.MinScore
	}
	if f.IsAccessory(candidate) {
		if !allowAccessories {
			return false
		}
		return f.textScore(candidate, target) >= minScore
	}
	return f.Score(candidate, target) >= minScore
}

// normalize lowercases and replaces punctuation with spaces, collapsing runs.
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// matchRatio returns a 0-1 similarity between two strings: twice the total
// length of the longest common matching blocks divided by the combined length.
func matchRatio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 0
	}
	return 2.0 * float64(matchingLen(ar, br)) / float64(total)
}

// matchingLen sums matching-block lengths: find the longest common substring,
// then recurse into the unmatched regions on either side of it.
func matchingLen(a, b []rune) int {
	ai, bi, n := longestCommonSubstring(a, b)
	if n == 0 {
		return 0
	}
	return n + matchingLen(a[:ai], b[:bi]) + matchingLen(a[ai+n:], b[bi+n:])
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] == b[j] {
				cur[j+1] = prev[j] + 1
				if cur[j+1] > size {
					size = cur[j+1]
					ai = i + 1 - size
					bi = j + 1 - size
				}
			} else {
				cur[j+1] = 0
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}
	return ai, bi, size
}
