package line

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestReply(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody replyRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("token-123", srv.URL)
	if err := client.Reply(context.Background(), "rt-1", "你好"); err != nil {
		t.Fatalf("Reply: %v", err)
	}

	if gotPath != "/v2/bot/message/reply" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody.ReplyToken != "rt-1" {
		t.Errorf("replyToken = %q", gotBody.ReplyToken)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Type != "text" || gotBody.Messages[0].Text != "你好" {
		t.Errorf("messages = %+v", gotBody.Messages)
	}
}

func TestPush(t *testing.T) {
	var gotPath string
	var gotBody pushRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("token-123", srv.URL)
	if err := client.Push(context.Background(), "user-9", "降價通知"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if gotPath != "/v2/bot/message/push" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.To != "user-9" {
		t.Errorf("to = %q", gotBody.To)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Text != "降價通知" {
		t.Errorf("messages = %+v", gotBody.Messages)
	}
}

func TestReply_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid reply token"}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("token-123", srv.URL)
	err := client.Reply(context.Background(), "stale", "hi")
	if err == nil {
		t.Fatal("expected error on 400")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error = %v, want status in message", err)
	}
}

func TestTruncate(t *testing.T) {
	short := strings.Repeat("字", 5000)
	if got := Truncate(short); got != short {
		t.Error("message at the limit must pass through unchanged")
	}

	long := strings.Repeat("字", 5001)
	got := Truncate(long)
	if !strings.HasSuffix(got, "內容過長已截斷") {
		t.Errorf("truncated message missing notice: ...%s", got[len(got)-30:])
	}
	if n := utf8.RuneCountInString(got); n > 5000 {
		t.Errorf("truncated message is %d runes, over the limit", n)
	}
	if !strings.HasPrefix(got, strings.Repeat("字", 4900)) {
		t.Error("truncated message must keep the first 4900 runes")
	}
	if strings.HasPrefix(got, strings.Repeat("字", 4901)) {
		t.Error("truncated message must cut at 4900 runes")
	}
}

func TestValidateSignature(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"events":[]}`)

	if !ValidateSignature(secret, body, Sign(secret, body)) {
		t.Error("valid signature rejected")
	}
	if ValidateSignature(secret, body, Sign("other-secret", body)) {
		t.Error("signature from wrong secret accepted")
	}
	if ValidateSignature(secret, []byte(`{"events":[{}]}`), Sign(secret, body)) {
		t.Error("signature over different body accepted")
	}
	if ValidateSignature(secret, body, "not-base64!") {
		t.Error("garbage signature accepted")
	}
}
