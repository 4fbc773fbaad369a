package maintenance

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ResetPurger deletes dead password-reset rows.
type ResetPurger interface {
	PurgeExpiredResets(now time.Time) (int64, error)
}

// Sweeper periodically purges consumed and expired password-reset rows.
// Token validity is always decided lazily at verification time; this loop
// only keeps the table from growing without bound.
type Sweeper struct {
	purger   ResetPurger
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool
	next     time.Time
}

// NewSweeper creates a sweeper from a standard cron expression.
func NewSweeper(purger ResetPurger, cronExpr string) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		purger:   purger,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the sweeper's ticking loop.
func (s *Sweeper) Run() {
	log.Info().Msg("Starting reset-token sweeper...")
	s.next = s.schedule.Next(time.Now())
	s.ticker = time.NewTicker(1 * time.Minute)
	defer s.ticker.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping reset-token sweeper.")
			return
		case now := <-s.ticker.C:
			if now.After(s.next) {
				s.purge(now)
				s.next = s.schedule.Next(now)
			}
		}
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.done <- true
}

func (s *Sweeper) purge(now time.Time) {
	purged, err := s.purger.PurgeExpiredResets(now)
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to purge reset tokens")
		return
	}
	if purged > 0 {
		log.Info().Int64("purged", purged).Msg("Sweeper: removed dead reset tokens")
	}
}
