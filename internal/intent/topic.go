package intent

import (
	"regexp"
	"strings"
)

// Topic is the coarse routing decision taken before intent classification.
type Topic string

const (
	// TopicNone marks a message outside the shopping domain.
	TopicNone Topic = "none"
	// TopicReview routes to the product review handler.
	TopicReview Topic = "review"
	// TopicPrice routes to the price query and tracking handler.
	TopicPrice Topic = "price"
)

var (
	reviewPatterns = compileAll(reviewPatternSrcs)
	pricePatterns  = compileAll(pricePatternSrcs)
)

func compileAll(srcs []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(srcs))
	for _, s := range srcs {
		res = append(res, regexp.MustCompile(s))
	}
	return res
}

const (
	patternScore = 10
	keywordScore = 2
)

// brandNames trigger review routing on their own: a bare brand or product
// mention with no price vocabulary reads as a request for product information.
var brandNames = []string{
	"iphone", "ipad", "macbook", "airpods", "apple", "蘋果",
	"samsung", "三星", "sony", "索尼", "xiaomi", "小米",
	"asus", "華碩", "acer", "宏碁", "msi", "微星",
	"razer", "雷蛇", "logitech", "羅技",
	"dyson", "戴森", "panasonic", "國際牌",
}

// DetectTopic decides whether a message belongs to the shopping domain and,
// if so, which handler owns it. Pattern hits dominate keyword counts; price
// wins ties so a message carrying both vocabularies still reaches the
// tracker. A bare brand mention with no scored vocabulary defaults to review.
func DetectTopic(message string) Topic {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return TopicNone
	}

	if containsAny(lower, nonShoppingIndicators) {
		return TopicNone
	}

	// Help, settings, and list requests carry no product vocabulary but still
	// belong to the bot.
	if containsAny(lower, helpKeywords) || containsAny(lower, settingsKeywords) || containsAny(lower, listKeywords) {
		return TopicPrice
	}

	reviewScore := scoreTopic(lower, reviewPatterns, reviewKeywords)
	priceScore := scoreTopic(lower, pricePatterns, priceTopicKeywords)

	switch {
	case priceScore == 0 && reviewScore == 0:
		if containsAny(lower, brandNames) {
			return TopicReview
		}
		return TopicNone
	case priceScore >= reviewScore:
		return TopicPrice
	default:
		return TopicReview
	}
}

func scoreTopic(lower string, patterns []*regexp.Regexp, keywords []string) int {
	score := 0
	for _, re := range patterns {
		if re.MatchString(lower) {
			score += patternScore
			break
		}
	}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score += keywordScore
		}
	}
	return score
}
