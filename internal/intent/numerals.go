package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// numeralValues maps single Chinese numeral runes to their value. 十 and 百 act
// as scalers inside a numeral run; 千 and 萬 are handled as magnitude splits.
var numeralValues = map[rune]int{
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
	'兩': 2, '倆': 2,
	'幾': 5, // "幾千" reads as roughly five thousand
	'十': 10, '百': 100,
}

var (
	arabicNumberRe  = regexp.MustCompile(`[0-9][0-9,]*`)
	chineseNumberRe = regexp.MustCompile(`[0-9一二三四五六七八九十百千萬兩倆幾]*[千萬][0-9一二三四五六七八九十百千]*|[一二三四五六七八九十百兩倆]+`)
)

// ExtractNumbers returns every numeric quantity found in text, in order of
// appearance. Arabic digits inside a magnitude expression ("2萬5千") belong to
// that expression and are not reported separately.
func ExtractNumbers(text string) []int {
	type span struct {
		start, end, val int
	}
	var spans []span

	chinese := chineseNumberRe.FindAllStringIndex(text, -1)
	for _, loc := range chinese {
		if v, ok := parseChineseNumber(text[loc[0]:loc[1]]); ok {
			spans = append(spans, span{loc[0], loc[1], v})
		}
	}

	for _, loc := range arabicNumberRe.FindAllStringIndex(text, -1) {
		covered := false
		for _, c := range chinese {
			if loc[0] >= c[0] && loc[1] <= c[1] {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		if v, err := strconv.Atoi(strings.ReplaceAll(text[loc[0]:loc[1]], ",", "")); err == nil {
			spans = append(spans, span{loc[0], loc[1], v})
		}
	}

	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	numbers := make([]int, 0, len(spans))
	for _, s := range spans {
		numbers = append(numbers, s.val)
	}
	return numbers
}

// minPlausiblePrice guards the positional fallback: bare numbers below it are
// model designations ("iPhone 15"), not prices.
const minPlausiblePrice = 100

// ExtractTargetPrice picks the numeric threshold out of a tracking request.
// A number following a price expression ("低於 25000") wins over earlier
// numbers, so model designations like the 15 in "iPhone 15" are not mistaken
// for the target. Absent a price expression it falls back to the first
// plausible price in the text; ok is false when none is found.
func ExtractTargetPrice(text string) (int, bool) {
	for _, expr := range priceExpressionKeywords {
		idx := strings.Index(text, expr)
		if idx < 0 {
			continue
		}
		after := text[idx+len(expr):]
		if nums := ExtractNumbers(after); len(nums) > 0 {
			return nums[0], true
		}
	}

	for _, n := range ExtractNumbers(text) {
		if n >= minPlausiblePrice {
			return n, true
		}
	}
	return 0, false
}

// parseChineseNumber converts a Chinese numeral expression to an integer.
// Magnitude words are handled compositionally: the text is split on the
// magnitude, the left part is the multiplier (1 when elided) and the right
// part the remainder, e.g. 兩萬五千 = 2×10000 + 5×1000. Only the 千 and 萬
// tiers are supported. ok is false when the input holds no recognized numeral.
func parseChineseNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}

	magnitudes := []struct {
		sep string
		val int
	}{
		{"萬", 10000},
		{"千", 1000},
	}
	for _, m := range magnitudes {
		before, after, found := strings.Cut(s, m.sep)
		if !found {
			continue
		}
		mult := parseNumeralRun(before)
		if mult == 0 {
			mult = 1
		}
		rest := 0
		if after != "" {
			if v, ok := parseChineseNumber(after); ok {
				rest = v
			}
		}
		v := mult*m.val + rest
		if v > 0 {
			return v, true
		}
		return 0, false
	}

	if v := parseNumeralRun(s); v > 0 {
		return v, true
	}
	return 0, false
}

// parseNumeralRun evaluates a run of digits/numerals without 千/萬: plain
// numerals accumulate positionally (二五 → 25) while 十 and 百 scale the
// pending value (二十五 → 25, 三百二十五 → 325).
func parseNumeralRun(s string) int {
	n, cur := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			cur = cur*10 + int(r-'0')
		case r == '十' || r == '百':
			if cur == 0 {
				cur = 1
			}
			n += cur * numeralValues[r]
			cur = 0
		default:
			if v, ok := numeralValues[r]; ok {
				cur = cur*10 + v
			}
		}
	}
	return n + cur
}
