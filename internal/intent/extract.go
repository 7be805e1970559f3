package intent

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// minProductNameRunes is the shortest residue accepted as a product name.
const minProductNameRunes = 2

// cleaningRes strip request verbs, price phrases and numeric thresholds from a
// message so only the product name remains. Order matters: threshold phrases
// are removed together with their amount so model numbers ("iPhone 15")
// survive while target prices ("低於 25000") do not.
var cleaningRes = []*regexp.Regexp{
	regexp.MustCompile(`請|幫我|給我|我要|想要|想買|想查|查詢|查看|搜尋|比價`),
	regexp.MustCompile(`多少錢|賣多少|值多少|要多少|價格`),
	regexp.MustCompile(`評[價論測](如何|怎麼樣|怎樣)?|好不好[用買]?|值得買嗎?|推薦嗎?|怎麼樣|怎樣|如何|好嗎|開箱|心得`),
	regexp.MustCompile(`追蹤|監控|關注|盯著|(通知|提醒)我?`),
	regexp.MustCompile(`(低於|少於|小於|不超過|便宜到|降到|跌到|掉到|下降到|不要超過|最多|頂多)\s*[0-9,]*[萬千]?[0-9,]*\s*元?`),
	regexp.MustCompile(`[0-9][0-9,]*\s*(元|塊|以下|以內)`),
	regexp.MustCompile(`[0-9一二三四五六七八九十百兩倆幾]*[千萬][0-9一二三四五六七八九十百千]*\s*元?`),
	regexp.MustCompile(`以下|以內|這個|那個|同樣|它`),
	regexp.MustCompile(`當|如果|的話|就|等到|到時候|時候|時`),
	regexp.MustCompile(`的|之|、|，|。|！|？`),
}

// conservativeRes is the narrower strip set used when the full set leaves too
// little text behind (e.g. the whole message was "查價格"). Tracking verbs and
// anaphora still have to go so "追蹤這個" does not survive as a product name.
var conservativeRes = []*regexp.Regexp{
	regexp.MustCompile(`^(請|幫我|給我|我要)`),
	regexp.MustCompile(`追蹤|監控|關注|盯著`),
	regexp.MustCompile(`這個|那個|同樣|它`),
	regexp.MustCompile(`(多少錢|價格)$`),
}

// aliasOrder holds canonical keywords sorted for deterministic substitution.
var aliasOrder = func() []string {
	keys := make([]string, 0, len(productAliases))
	for k := range productAliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// ExtractProductName strips query phrasing from a message and returns the
// normalized product name. ok is false when nothing usable remains.
func ExtractProductName(message string) (string, bool) {
	cleaned := message
	for _, re := range cleaningRes {
		cleaned = re.ReplaceAllString(cleaned, " ")
	}
	cleaned = collapse(cleaned)

	if utf8.RuneCountInString(cleaned) < minProductNameRunes+1 {
		cleaned = message
		for _, re := range conservativeRes {
			cleaned = re.ReplaceAllString(cleaned, " ")
		}
		cleaned = collapse(cleaned)
	}

	cleaned = NormalizeProductName(cleaned)
	if utf8.RuneCountInString(cleaned) < minProductNameRunes {
		return "", false
	}
	return cleaned, true
}

// NormalizeProductName lowercases the name and maps known colloquial aliases
// (蘋果手機, 愛鳳, ...) to their canonical product keyword.
func NormalizeProductName(name string) string {
	text := strings.ToLower(name)
	for _, canonical := range aliasOrder {
		for _, alias := range productAliases[canonical] {
			// "airpod" inside "airpods" must not double-substitute.
			if strings.Contains(canonical, alias) && strings.Contains(text, canonical) {
				continue
			}
			if strings.Contains(text, alias) {
				text = strings.ReplaceAll(text, alias, canonical)
			}
		}
	}
	return collapse(text)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
