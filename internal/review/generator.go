// Package review builds the product review analysis replies. An LLM writes
// the analysis when an API key is configured; otherwise a static template
// with platform search links is used.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/kalambet/shopwatch/internal/llm"
	"github.com/kalambet/shopwatch/internal/search"
)

// Generator produces the review reply for a product.
type Generator interface {
	Generate(ctx context.Context, product, priceRange string) (string, error)
}

// NewGenerator returns an LLMGenerator when a client is configured,
// TemplateGenerator otherwise.
func NewGenerator(client *llm.Client) Generator {
	if client == nil {
		return &TemplateGenerator{}
	}
	return &LLMGenerator{client: client, fallback: &TemplateGenerator{}}
}

// PriceRangeText formats the observed price bounds for the review reply.
func PriceRangeText(min, max int) string {
	if min <= 0 {
		return "無法獲取價格資訊"
	}
	return search.FormatNTD(min) + "~" + search.FormatNTD(max)
}

const systemPrompt = "你是專業的商品評論分析師，請提供客觀、實用的商品評價。"

// LLMGenerator asks a chat model for the analysis and falls back to the
// template when the request fails.
type LLMGenerator struct {
	client   *llm.Client
	fallback Generator
}

func (g *LLMGenerator) Generate(ctx context.Context, product, priceRange string) (string, error) {
	prompt := fmt.Sprintf(`請為「%s」生成詳細的商品評價分析，使用以下格式：

【%s】真實評價分析：
⭐ 評分：[根據商品類型和品質給予1-10分評分，使用星星符號]（X/10分）
🎁 好評率：[估計一個合理的百分比]%%

💰 價格區間：%s

✅ 真實正面評價：
[列出3-4點該商品的優點或正面評價]

❌ 真實負面評價：
[列出2-3點該商品的缺點或需要注意的地方]

💡 購買建議：
[給出專業的購買建議，包括適合的使用者群體和購買時機]

📋 推薦購買連結：
%s`, product, product, priceRange, searchLinks(product))

	content, err := g.client.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, 0.7, 800)
	if err != nil {
		slog.Warn("review generation failed, using template", "product", product, "error", err)
		return g.fallback.Generate(ctx, product, priceRange)
	}
	return content, nil
}

// TemplateGenerator produces the static reply used when no LLM is available.
type TemplateGenerator struct{}

func (g *TemplateGenerator) Generate(_ context.Context, product, priceRange string) (string, error) {
	return fmt.Sprintf(`【%s】商品資訊：

💰 價格區間：%s

📋 推薦購買連結：
%s

💡 詳細評價分析暫時無法提供，請直接前往購物平台查看用戶評價。`, product, priceRange, searchLinks(product)), nil
}

func searchLinks(product string) string {
	q := url.QueryEscape(product)
	return fmt.Sprintf(`• 蝦皮：https://shopee.tw/search?keyword=%s
• PChome：https://ecshweb.pchome.com.tw/search/v3.3/?q=%s
• MOMO：https://www.momoshop.com.tw/search/searchShop.jsp?keyword=%s`, q, q, q)
}
