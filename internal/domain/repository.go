package domain

import (
	"context"
	"tour-monitor/models"
)

// HistoryStore keeps every price observation and answers "latest price for this exact route".
type HistoryStore interface {
	// Latest returns the most recent price stored for route. ok is false when there is none.
	Latest(ctx context.Context, route models.Route) (price int, ok bool, err error)
	Insert(ctx context.Context, obs models.PriceObservation) error
}

// Notifier delivers a text payload to a messaging channel.
type Notifier interface {
	Send(ctx context.Context, channelID, text string) error
}
