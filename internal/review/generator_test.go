package review

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/shopwatch/internal/llm"
)

func TestNewGenerator_SelectsImplementation(t *testing.T) {
	if _, ok := NewGenerator(nil).(*TemplateGenerator); !ok {
		t.Error("nil client must select TemplateGenerator")
	}
	if _, ok := NewGenerator(llm.NewClient("key", "gpt-4o-mini")).(*LLMGenerator); !ok {
		t.Error("configured client must select LLMGenerator")
	}
}

func TestTemplateGenerator(t *testing.T) {
	g := &TemplateGenerator{}

	got, err := g.Generate(context.Background(), "iphone 15", "NT$23,900~NT$25,900")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{"iphone 15", "NT$23,900~NT$25,900", "shopee.tw", "pchome.com.tw", "momoshop.com.tw"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply missing %q", want)
		}
	}
}

func TestLLMGenerator_FallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGenerator(llm.NewClientWithBaseURL("key", "gpt-4o-mini", srv.URL))
	got, err := g.Generate(context.Background(), "ps5", "NT$13,880~NT$15,000")
	if err != nil {
		t.Fatalf("Generate must degrade, got error: %v", err)
	}
	if !strings.Contains(got, "詳細評價分析暫時無法提供") {
		t.Errorf("reply = %q, want template fallback", got)
	}
}

func TestLLMGenerator_UsesModelReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"模型生成的評價"}}]}`))
	}))
	defer srv.Close()

	g := NewGenerator(llm.NewClientWithBaseURL("key", "gpt-4o-mini", srv.URL))
	got, err := g.Generate(context.Background(), "ps5", "NT$13,880")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "模型生成的評價" {
		t.Errorf("reply = %q", got)
	}
}

func TestPriceRangeText(t *testing.T) {
	if got := PriceRangeText(23900, 25900); got != "NT$23,900~NT$25,900" {
		t.Errorf("PriceRangeText = %q", got)
	}
	if got := PriceRangeText(0, 0); got != "無法獲取價格資訊" {
		t.Errorf("PriceRangeText(0,0) = %q", got)
	}
}
