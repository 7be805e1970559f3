package intent

import (
	"reflect"
	"testing"
)

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		text string
		want []int
	}{
		{"iPhone 15 低於 23,000", []int{15, 23000}},
		{"兩萬五千", []int{25000}},
		{"2萬5千", []int{25000}},
		{"幾千", []int{5000}},
		{"三百二十五", []int{325}},
		{"一萬五千元", []int{15000}},
		{"沒有數字", nil},
	}
	for _, tt := range tests {
		got := ExtractNumbers(tt.text)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractNumbers(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestExtractTargetPrice(t *testing.T) {
	tests := []struct {
		text   string
		want   int
		wantOK bool
	}{
		// The number after the threshold phrase wins over the model number.
		{"幫我追蹤 iPhone 15 低於 23000", 23000, true},
		{"追蹤PS5 降到一萬五千", 15000, true},
		{"PS5 便宜到兩萬以下就通知我", 20000, true},
		// No threshold phrase: first plausible price.
		{"追蹤PS5 25000", 25000, true},
		// Bare model numbers are not prices.
		{"幫我追蹤 iPhone 15", 0, false},
		{"追蹤PS5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractTargetPrice(tt.text)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ExtractTargetPrice(%q) = (%d, %v), want (%d, %v)",
				tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseChineseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"兩萬五千", 25000},
		{"兩萬", 20000},
		{"萬", 10000}, // elided multiplier reads as one
		{"千", 1000},
		{"幾千", 5000},
		{"二十五", 25},
		{"十", 10},
		{"五千", 5000},
	}
	for _, tt := range tests {
		got, ok := parseChineseNumber(tt.in)
		if !ok || got != tt.want {
			t.Errorf("parseChineseNumber(%q) = (%d, %v), want (%d, true)", tt.in, got, ok, tt.want)
		}
	}

	if _, ok := parseChineseNumber(""); ok {
		t.Error("empty input must not parse")
	}
}
