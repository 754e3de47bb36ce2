// Package scheduler wires the nightly incremental processing job.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/calculadora-ir-stocks/server-sub001/internal/service"
)

// Scheduler runs the nightly job that processes yesterday's movements for
// every synced account. It owns no processing logic itself.
type Scheduler struct {
	cron        *cron.Cron
	syncService *service.SyncService
}

// New creates a Scheduler firing on the given cron spec.
func New(spec string, syncService *service.SyncService) (*Scheduler, error) {
	s := &Scheduler{
		cron:        cron.New(),
		syncService: syncService,
	}

	_, err := s.cron.AddFunc(spec, s.runNightly)
	if err != nil {
		return nil, fmt.Errorf("invalid sync cron spec %q: %w", spec, err)
	}

	return s, nil
}

// Start begins firing scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runNightly() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	log.Printf("nightly sync starting for %s", yesterday.Format("2006-01-02"))

	if err := s.syncService.ProcessAllDaily(context.Background(), yesterday); err != nil {
		log.Printf("nightly sync finished with errors: %v", err)
		return
	}

	log.Printf("nightly sync finished for %s", yesterday.Format("2006-01-02"))
}
