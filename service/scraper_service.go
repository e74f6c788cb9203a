package service

import (
	"context"
	"strconv"
	"time"
	"tour-monitor/config"
	"tour-monitor/internal/domain"
	"tour-monitor/metrics"
	"tour-monitor/models"
	"tour-monitor/notify"
	"tour-monitor/utils"

	"go.uber.org/zap"
)

// Summary counts what happened during one run.
type Summary struct {
	Routes         int
	Found          int
	NoPrice        int
	Failed         int
	Notified       int
	NotifyFailures int
}

// LinkFunc returns the search URL of a route, used in messages.
type LinkFunc func(models.Route) string

type ScraperService struct {
	iterator  *Iterator
	evaluator *Evaluator
	notifier  domain.Notifier
	recorder  *metrics.Recorder
	notify    config.NotifyConfig
	link      LinkFunc
	log       *zap.Logger
}

func NewScraperService(
	it *Iterator,
	ev *Evaluator,
	n domain.Notifier,
	rec *metrics.Recorder,
	cfg config.NotifyConfig,
	link LinkFunc,
	log *zap.Logger,
) *ScraperService {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	return &ScraperService{
		iterator:  it,
		evaluator: ev,
		notifier:  n,
		recorder:  rec,
		notify:    cfg,
		link:      link,
		log:       log,
	}
}

// Run makes one full pass over routes. Partial failures only show up in the summary.
func (s *ScraperService) Run(ctx context.Context, routes []models.Route) Summary {
	var sum Summary
	start := time.Now()

	for route, outcome := range s.iterator.Run(ctx, routes) {
		sum.Routes++
		s.recorder.Route(outcome.Kind.String(), outcome.Took)

		switch outcome.Kind {
		case models.InteractionFailed:
			sum.Failed++
		case models.NoPriceFound:
			sum.NoPrice++
		case models.PriceFound:
			sum.Found++
			s.handlePrice(ctx, route, outcome.Price, &sum)
		}
	}

	s.recorder.Finished(time.Now())
	s.log.Info("run finished",
		zap.Int("routes", sum.Routes),
		zap.Int("found", sum.Found),
		zap.Int("no_price", sum.NoPrice),
		zap.Int("failed", sum.Failed),
		zap.Int("notified", sum.Notified),
		zap.Int("notify_failures", sum.NotifyFailures),
		zap.Duration("took", time.Since(start)),
	)
	return sum
}

func (s *ScraperService) handlePrice(ctx context.Context, route models.Route, price int, sum *Summary) {
	s.recorder.Price(route.Origin, route.Destination, strconv.Itoa(route.Nights), price)

	decision := s.evaluator.Evaluate(ctx, route, price)
	s.recorder.Decision(decision.Kind.String())

	if !ShouldNotify(s.notify.Policy, decision) {
		return
	}

	msg := notify.Message{Route: route, Price: price, Decision: decision}
	if s.notify.IncludeLink && s.link != nil {
		msg.Link = s.link(route)
	}

	if err := s.notifier.Send(ctx, s.notify.ChannelID, notify.Format(msg)); err != nil {
		sum.NotifyFailures++
		s.recorder.Notification(false)
		s.log.Warn("notification failed",
			append(utils.RouteFields(route.Origin, route.Destination, route.Nights), zap.Error(err))...)
		return
	}
	sum.Notified++
	s.recorder.Notification(true)
}
