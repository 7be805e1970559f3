package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/shopwatch/internal/line"
)

type stubBot struct {
	replies map[string]string
	seen    []string
}

func (b *stubBot) HandleMessage(_ context.Context, userID, text string) string {
	b.seen = append(b.seen, userID+":"+text)
	if r, ok := b.replies[text]; ok {
		return r
	}
	return "ok"
}

type stubReplier struct {
	tokens []string
	texts  []string
}

func (r *stubReplier) Reply(_ context.Context, replyToken, text string) error {
	r.tokens = append(r.tokens, replyToken)
	r.texts = append(r.texts, text)
	return nil
}

const testSecret = "channel-secret"

func postCallback(t *testing.T, handler http.Handler, body string, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	if sign {
		req.Header.Set("X-Line-Signature", line.Sign(testSecret, []byte(body)))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_TextMessage(t *testing.T) {
	bot := &stubBot{replies: map[string]string{"iPhone 15 多少錢": "比價結果..."}}
	replier := &stubReplier{}
	handler := NewWebhookHandler(WebhookDeps{ChannelSecret: testSecret, Bot: bot, Replier: replier})

	body := `{"events":[{"type":"message","message":{"type":"text","text":"iPhone 15 多少錢"},"source":{"userId":"u1"},"replyToken":"rt-1"}]}`
	rec := postCallback(t, handler, body, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(bot.seen) != 1 || bot.seen[0] != "u1:iPhone 15 多少錢" {
		t.Errorf("bot saw %v", bot.seen)
	}
	if len(replier.tokens) != 1 || replier.tokens[0] != "rt-1" {
		t.Errorf("reply tokens = %v", replier.tokens)
	}
	if replier.texts[0] != "比價結果..." {
		t.Errorf("reply text = %q", replier.texts[0])
	}
}

func TestWebhook_InvalidSignature(t *testing.T) {
	bot := &stubBot{}
	handler := NewWebhookHandler(WebhookDeps{ChannelSecret: testSecret, Bot: bot, Replier: &stubReplier{}})

	body := `{"events":[]}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", line.Sign("wrong-secret", []byte(body)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(bot.seen) != 0 {
		t.Error("bot must not run on a forged request")
	}
}

func TestWebhook_MissingSignature(t *testing.T) {
	handler := NewWebhookHandler(WebhookDeps{ChannelSecret: testSecret, Bot: &stubBot{}, Replier: &stubReplier{}})

	if rec := postCallback(t, handler, `{"events":[]}`, false); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWebhook_IgnoresNonTextEvents(t *testing.T) {
	bot := &stubBot{}
	replier := &stubReplier{}
	handler := NewWebhookHandler(WebhookDeps{ChannelSecret: testSecret, Bot: bot, Replier: replier})

	body := `{"events":[` +
		`{"type":"follow","source":{"userId":"u1"},"replyToken":"rt-1"},` +
		`{"type":"message","message":{"type":"sticker"},"source":{"userId":"u1"},"replyToken":"rt-2"}` +
		`]}`
	rec := postCallback(t, handler, body, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(bot.seen) != 0 || len(replier.tokens) != 0 {
		t.Error("non-text events must be acknowledged without processing")
	}
}

func TestWebhook_HomeAndHealth(t *testing.T) {
	handler := NewWebhookHandler(WebhookDeps{ChannelSecret: testSecret, Bot: &stubBot{}, Replier: &stubReplier{}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	b, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK || !strings.Contains(string(b), "running") {
		t.Errorf("home = %d %q", rec.Code, b)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}
