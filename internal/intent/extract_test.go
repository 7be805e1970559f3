package intent

import "testing"

func TestExtractProductName(t *testing.T) {
	tests := []struct {
		message string
		want    string
		wantOK  bool
	}{
		{"iPhone 15 多少錢", "iphone 15", true},
		{"幫我追蹤 iPhone 15 低於 23000", "iphone 15", true},
		{"PS5 便宜到兩萬以下就通知我", "ps5", true},
		{"請查詢 MacBook Air 的價格", "macbook", true},
		{"iPhone 15 評價如何", "iphone 15", true},
		{"當PS5 價格少於 12000 就提醒我", "ps5", true},
	}
	for _, tt := range tests {
		got, ok := ExtractProductName(tt.message)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ExtractProductName(%q) = (%q, %v), want (%q, %v)",
				tt.message, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestExtractProductName_NothingLeft(t *testing.T) {
	for _, message := range []string{"查價格", "追蹤這個", "多少錢"} {
		if name, ok := ExtractProductName(message); ok {
			t.Errorf("ExtractProductName(%q) = (%q, true), want no product", message, name)
		}
	}
}

func TestNormalizeProductName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"蘋果手機 15", "iphone 15"},
		{"愛鳳", "iphone"},
		{"任天堂", "switch"},
		{"Viper V3Pro", "viper"},
		{"AirPods Pro", "airpods pro"}, // alias must not corrupt the canonical form
		{"iPhone 15 Pro", "iphone 15 pro"},
	}
	for _, tt := range tests {
		if got := NormalizeProductName(tt.in); got != tt.want {
			t.Errorf("NormalizeProductName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
