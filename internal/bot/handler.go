// Package bot routes incoming user messages: topic detection first, then
// intent classification, then dispatch to the review or tracking handlers.
// Every path returns reply text; the bot never answers with silence.
package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kalambet/shopwatch/internal/conversation"
	"github.com/kalambet/shopwatch/internal/intent"
	"github.com/kalambet/shopwatch/internal/review"
	"github.com/kalambet/shopwatch/internal/search"
	"github.com/kalambet/shopwatch/internal/tracker"
)

const (
	msgOffTopic   = "❌ 此問題與SmartShopSaver功能無關，無法回答。SmartShopSaver專注於協助您解決購物相關問題。"
	msgInternal   = "❌ 系統處理過程中發生錯誤，請稍後再試"
	msgReviewDown = "❌ 商品評價分析暫時無法使用，請稍後再試"

	helpText = "🤖 SmartShopSaver 智能購物助手\n\n" +
		"📊【商品評價分析】\n" +
		"輸入商品名稱即可獲得評價分析\n" +
		"範例：「iPhone 15 評價如何」\n\n" +
		"💰【價格查詢追蹤】\n" +
		"• 查價格：「iPhone 15 多少錢」\n" +
		"• 設追蹤：「iPhone 15 低於 25000 元時通知我」\n" +
		"• 看清單：「我的追蹤清單」\n\n" +
		"⚙️【偏好設定】\n" +
		"• 「允許配件」- 搜尋結果包含配件\n" +
		"• 「過濾配件」- 只顯示主商品\n\n" +
		"有任何購物問題，直接輸入即可！"
)

// Searcher supplies the price range shown inside review replies.
type Searcher interface {
	SearchAll(ctx context.Context, product string, prefs search.Prefs) *search.Aggregate
}

// Handler is the message router.
type Handler struct {
	tracker       *tracker.Service
	review        review.Generator
	search        Searcher
	conversations *conversation.Store
	logger        *slog.Logger
}

// NewHandler wires the router. conversations may be nil; a fresh in-memory
// store is created in that case.
func NewHandler(trk *tracker.Service, rev review.Generator, searcher Searcher, conversations *conversation.Store, logger *slog.Logger) *Handler {
	if conversations == nil {
		conversations = conversation.NewStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tracker:       trk,
		review:        rev,
		search:        searcher,
		conversations: conversations,
		logger:        logger,
	}
}

// HandleMessage produces the reply for one user message. Panics in downstream
// handlers degrade to a generic error reply so the webhook always answers.
func (h *Handler) HandleMessage(ctx context.Context, userID, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("message handling panicked", "user", userID, "panic", r)
			reply = msgInternal
		}
	}()

	text = strings.TrimSpace(text)
	h.conversations.Append(userID, conversation.Entry{Role: "user", Text: text})

	switch intent.DetectTopic(text) {
	case intent.TopicNone:
		reply = msgOffTopic
	case intent.TopicReview:
		reply = h.handleReview(ctx, userID, text)
	default:
		reply = h.handlePrice(ctx, userID, text)
	}

	h.conversations.Append(userID, conversation.Entry{Role: "bot", Text: reply})
	return reply
}

// handleReview extracts the product, fetches its price range, and generates
// the analysis.
func (h *Handler) handleReview(ctx context.Context, userID, text string) string {
	product, ok := intent.ExtractProductName(text)
	if !ok {
		product = text
	}

	priceRange := "無法獲取價格資訊"
	agg := h.search.SearchAll(ctx, product, search.Prefs{})
	if agg.Cheapest != nil {
		priceRange = review.PriceRangeText(agg.MinPrice, agg.MaxPrice)
	}

	analysis, err := h.review.Generate(ctx, product, priceRange)
	if err != nil {
		h.logger.Error("review generation failed", "product", product, "error", err)
		return msgReviewDown
	}

	h.conversations.Update(userID, "review", product, 0)
	return analysis
}

// handlePrice classifies the message and dispatches to the tracking service.
func (h *Handler) handlePrice(ctx context.Context, userID, text string) string {
	var snapshot *conversation.Snapshot
	if snap, ok := h.conversations.Snapshot(userID); ok {
		snapshot = &snap
	}

	it := intent.Classify(text, snapshot)
	h.logger.Info("intent classified",
		"user", userID, "action", it.Action, "product", it.ProductName,
		"confidence", it.Confidence, "context_used", it.ContextUsed)

	switch it.Action {
	case intent.ActionQueryPrice:
		h.conversations.Update(userID, string(it.Action), it.ProductName, 0)
		return h.tracker.QueryPrice(ctx, userID, it.ProductName)
	case intent.ActionTrackProduct:
		h.conversations.Update(userID, string(it.Action), it.ProductName, it.TargetPrice)
		return h.tracker.Track(ctx, userID, it.ProductName, it.TargetPrice)
	case intent.ActionTrackNeedPrice:
		h.conversations.Update(userID, string(it.Action), it.ProductName, 0)
		if it.ProductName == "" {
			return h.tracker.NeedPriceReply()
		}
		return intent.Clarification(it)
	case intent.ActionListTrackers:
		return h.tracker.List(userID)
	case intent.ActionUserSettings:
		return h.tracker.Settings(userID, text)
	case intent.ActionShowHelp:
		return helpText
	default:
		return intent.Clarification(it)
	}
}
