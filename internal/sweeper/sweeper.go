package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/metrics"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/services"
)

// Sweeper runs the story expiry sweep on a schedule. The sweep is purely
// a bookkeeping pass; visibility never depends on it.
type Sweeper struct {
	cron    *cron.Cron
	stories *services.StoryService
	log     *zap.SugaredLogger
}

func New(stories *services.StoryService, log *zap.SugaredLogger) *Sweeper {
	return &Sweeper{cron: cron.New(), stories: stories, log: log}
}

// Start schedules the sweep every interval minutes and runs one sweep
// immediately so a restart does not leave a backlog.
func (s *Sweeper) Start(everyMinutes int) error {
	spec := fmt.Sprintf("@every %dm", everyMinutes)
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	go s.sweep()
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := s.stories.ExpirySweep(ctx)
	if err != nil {
		s.log.Errorw("story expiry sweep failed", "err", err)
		return
	}
	if n > 0 {
		metrics.AddSweptStories(n)
		s.log.Infow("story expiry sweep", "deactivated", n)
	}
}
