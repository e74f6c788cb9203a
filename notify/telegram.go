// Package notify formats price reports and delivers them to a messaging channel.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"tour-monitor/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Telegram sends messages through the Bot API. Sends are spaced by a limiter so a burst of
// price reports does not trip the API's flood control.
type Telegram struct {
	client  *resty.Client
	token   string
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewTelegram(cfg config.NotifyConfig, log *zap.Logger) *Telegram {
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	return &Telegram{
		client:  client,
		token:   cfg.BotToken,
		limiter: rate.NewLimiter(limit, 1),
		log:     log.Named("telegram"),
	}
}

// Send posts text to channelID with HTML parse mode. Non-2xx responses and ok=false replies
// are failures; nothing is retried.
func (t *Telegram) Send(ctx context.Context, channelID, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram: wait for send slot: %w", err)
	}

	var reply apiResponse
	start := time.Now()
	res, err := t.client.R().
		SetContext(ctx).
		SetPathParam("token", t.token).
		SetBody(sendMessageRequest{
			ChatID:                channelID,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
		}).
		SetResult(&reply).
		SetError(&reply).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram: send: %w", t.redact(err))
	}
	if res.IsError() || !reply.OK {
		return fmt.Errorf("telegram: status %d: %s", res.StatusCode(), reply.Description)
	}

	t.log.Debug("message delivered", zap.String("channel", channelID), zap.Duration("took", time.Since(start)))
	return nil
}

// redact strips the request URL, which carries the bot token, from transport errors.
func (t *Telegram) redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = fmt.Errorf("%s sendMessage: %w", uerr.Op, uerr.Err)
	}
	if t.token != "" && strings.Contains(err.Error(), t.token) {
		return errors.New(strings.ReplaceAll(err.Error(), t.token, "***"))
	}
	return err
}

// LogNotifier writes messages to the log instead of delivering them. Used when no bot token
// is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log.Named("dry-run")}
}

func (n *LogNotifier) Send(_ context.Context, channelID, text string) error {
	n.log.Info("message not sent (no bot token)", zap.String("channel", channelID), zap.String("text", text))
	return nil
}
