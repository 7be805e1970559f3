// Package intent is a deterministic, keyword- and pattern-driven classifier
// for the narrow product-shopping vocabulary the assistant understands. It is
// not a general language model: messages outside the documented keyword sets
// yield an Unknown intent with a clarifying suggestion rather than a guess.
package intent

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kalambet/shopwatch/internal/conversation"
)

// Action identifies what the user wants done.
type Action string

const (
	ActionQueryPrice     Action = "query_price"
	ActionTrackProduct   Action = "track_product"
	ActionTrackNeedPrice Action = "track_product_need_price"
	ActionListTrackers   Action = "list_trackers"
	ActionUserSettings   Action = "user_settings"
	ActionShowHelp       Action = "show_help"
	ActionUnknown        Action = "unknown"
)

// Intent is the structured classification of one message.
type Intent struct {
	Action      Action
	ProductName string
	TargetPrice int // only set for ActionTrackProduct
	Confidence  float64
	ContextUsed bool   // product resolved from conversation context
	Suggestion  string // clarifying hint for low-confidence results
	RawMessage  string
}

// shortMessageRunes is the length under which an anaphoric message ("追蹤這個")
// is resolved against conversation context instead of its own text.
const shortMessageRunes = 10

// Classify determines the action a message asks for. last is the caller's
// conversation snapshot and may be nil; it is consulted only for short
// anaphoric messages. First match in the documented decision order wins.
func Classify(message string, last *conversation.Snapshot) Intent {
	message = strings.TrimSpace(message)
	lower := strings.ToLower(message)

	// 1. Context shortcut: "追蹤這個" refers to the last discussed product.
	if last != nil && last.LastProduct != "" && utf8.RuneCountInString(message) < shortMessageRunes {
		if containsAny(message, anaphoraKeywords) && containsAny(lower, trackingKeywords) {
			return Intent{
				Action:      ActionTrackNeedPrice,
				ProductName: last.LastProduct,
				Confidence:  0.8,
				ContextUsed: true,
				RawMessage:  message,
			}
		}
	}

	// 2. Tracker listing goes before the price and tracking checks because its
	// phrasings ("我的追蹤清單") contain tracking and query vocabulary.
	if containsAny(lower, listKeywords) {
		return Intent{Action: ActionListTrackers, Confidence: 0.9, RawMessage: message}
	}

	// 3. Price query. A message that states a numeric threshold is a tracking
	// request even when it carries query vocabulary ("PS5 價格少於 12000 就提醒我"),
	// so it falls through to the tracking branch.
	hasThreshold := containsAny(lower, priceExpressionKeywords) && containsAny(lower, trackingKeywords)
	if !hasThreshold && containsAny(lower, priceQueryKeywords) {
		if name, ok := ExtractProductName(message); ok {
			return Intent{
				Action:      ActionQueryPrice,
				ProductName: name,
				Confidence:  0.9,
				RawMessage:  message,
			}
		}
	}

	// 4. Tracking request, with or without a numeric target.
	if containsAny(lower, trackingKeywords) {
		if name, ok := ExtractProductName(message); ok {
			if price, found := ExtractTargetPrice(message); found {
				return Intent{
					Action:      ActionTrackProduct,
					ProductName: name,
					TargetPrice: price,
					Confidence:  0.95,
					RawMessage:  message,
				}
			}
			return Intent{
				Action:      ActionTrackNeedPrice,
				ProductName: name,
				Confidence:  0.8,
				RawMessage:  message,
			}
		}
	}

	// 5-6. Settings and help.
	if containsAny(lower, settingsKeywords) {
		return Intent{Action: ActionUserSettings, Confidence: 0.8, RawMessage: message}
	}
	if containsAny(lower, helpKeywords) {
		return Intent{Action: ActionShowHelp, Confidence: 0.9, RawMessage: message}
	}

	// 7-8. Fuzzy fallback on known product keywords, else unknown.
	return fuzzyMatch(message, lower)
}

// fuzzyMatch guesses an intent from bare product keywords when no intent
// keyword matched. Confidence is capped at 0.6.
func fuzzyMatch(message, lower string) Intent {
	var product string
	for _, kw := range productKeywords {
		if strings.Contains(lower, kw) {
			product = kw
			break
		}
	}

	if product != "" {
		// Price hints first: "多少" contains the cheaper hint "少".
		if containsAny(lower, priceHints) {
			return Intent{
				Action:      ActionQueryPrice,
				ProductName: product,
				Confidence:  0.6,
				RawMessage:  message,
			}
		}
		if containsAny(lower, cheaperHints) {
			return Intent{
				Action:      ActionTrackNeedPrice,
				ProductName: product,
				Confidence:  0.6,
				Suggestion:  fmt.Sprintf("看起來您想追蹤 %s，請告訴我目標價格", product),
				RawMessage:  message,
			}
		}
	}

	return Intent{
		Action:     ActionUnknown,
		Confidence: 0,
		Suggestion: "我不太理解您的需求，可以說得更具體一些嗎？",
		RawMessage: message,
	}
}

// Clarification builds the follow-up question for an intent that needs more
// information from the user.
func Clarification(it Intent) string {
	switch {
	case it.Action == ActionTrackNeedPrice:
		product := it.ProductName
		if product == "" {
			product = "這個商品"
		}
		return fmt.Sprintf("您想追蹤 %s，請告訴我當價格低於多少時要通知您？", product)
	case it.Action == ActionQueryPrice && it.Confidence < 0.8:
		return "您想查詢哪個具體商品的價格？可以說得更詳細一些"
	case it.Suggestion != "":
		return it.Suggestion
	}
	return "請問您想要做什麼？可以說「查價格」或「設定追蹤」"
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
