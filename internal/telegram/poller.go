package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller feeds updates from getUpdates to a handler, one at a time.
type Poller struct {
	Client  *Client
	Timeout time.Duration // long-poll timeout sent to Telegram
	Backoff time.Duration // pause after a failed getUpdates
}

// Run polls until ctx is cancelled. Handler errors are logged and the update
// is acknowledged anyway so a poison update cannot stall the bot.
func (p *Poller) Run(ctx context.Context, handle func(context.Context, Update) error) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 3 * time.Second
	}

	offset := 0
	for {
		updates, err := p.Client.GetUpdates(ctx, offset, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if err := handle(ctx, u); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Int("update", u.UpdateID).Int64("chat", ChatID(u)).Msg("handle update")
			}
		}
	}
}
