package intent

import "testing"

func TestDetectTopic(t *testing.T) {
	tests := []struct {
		message string
		want    Topic
	}{
		// Out of domain.
		{"今天天氣如何", TopicNone},
		{"你好嗎", TopicNone},
		{"幫我寫python程式", TopicNone},
		{"", TopicNone},
		{"blah blah", TopicNone},

		// Price and tracking vocabulary.
		{"iPhone 15 多少錢", TopicPrice},
		{"幫我追蹤 PS5 的降價", TopicPrice},
		{"MacBook 哪裡買比較便宜", TopicPrice},

		// Review vocabulary.
		{"PS5 值得買嗎", TopicReview},
		{"想買 Dyson 吸塵器", TopicReview},
		{"AirPods Pro 的評價如何", TopicReview},

		// Bare brand mention defaults to review.
		{"iphone", TopicReview},

		// Help, settings, and list requests stay in domain despite having no
		// product vocabulary.
		{"使用方法", TopicPrice},
		{"help", TopicPrice},
		{"設定允許配件", TopicPrice},
		{"列表", TopicPrice},
	}
	for _, tt := range tests {
		if got := DetectTopic(tt.message); got != tt.want {
			t.Errorf("DetectTopic(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestDetectTopic_PriceWinsTies(t *testing.T) {
	// Both topics hit a pattern; equal scores must route to the price handler
	// so tracking requests are never swallowed by the review generator.
	if got := DetectTopic("iPhone 評價如何 多少錢"); got != TopicPrice {
		t.Errorf("DetectTopic = %q, want %q", got, TopicPrice)
	}
}
