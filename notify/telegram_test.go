package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
	"tour-monitor/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func telegramConfig(url string) config.NotifyConfig {
	return config.NotifyConfig{
		BotToken: "123:abc",
		APIURL:   url + "/",
		Timeout:  5 * time.Second,
	}
}

func TestTelegramSend(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	tg := NewTelegram(telegramConfig(srv.URL), nil)
	require.NoError(t, tg.Send(context.Background(), "@cheap_tours", "<b>hi</b>"))

	assert.Equal(t, sendMessageRequest{
		ChatID:                "@cheap_tours",
		Text:                  "<b>hi</b>",
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}, got)
}

func TestTelegramSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := NewTelegram(telegramConfig(srv.URL), nil).Send(context.Background(), "@nope", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramOkFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was kicked"}`))
	}))
	defer srv.Close()

	err := NewTelegram(telegramConfig(srv.URL), nil).Send(context.Background(), "@chan", "x")
	assert.ErrorContains(t, err, "bot was kicked")
}

func TestTelegramRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg := telegramConfig(srv.URL)
	cfg.Interval = time.Hour
	tg := NewTelegram(cfg, nil)
	require.NoError(t, tg.Send(context.Background(), "@chan", "first"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorContains(t, tg.Send(ctx, "@chan", "second"), "wait for send slot")
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(nil).Send(context.Background(), "@chan", "text"))
}

func TestTelegramTransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	cfg := telegramConfig(addr)
	cfg.BotToken = "123:SECRET"
	err := NewTelegram(cfg, nil).Send(context.Background(), "@chan", "x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
	assert.Contains(t, err.Error(), "telegram: send")
}

func TestRedactKeepsContextErrors(t *testing.T) {
	tg := NewTelegram(telegramConfig("http://127.0.0.1:1"), nil)
	err := tg.redact(&url.Error{Op: "Post", URL: "http://127.0.0.1:1/bot123:abc/sendMessage", Err: context.DeadlineExceeded})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, err.Error(), "123:abc")
}
