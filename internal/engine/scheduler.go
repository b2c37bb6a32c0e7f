package engine

import (
	"context"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
)

// Processor processes one document.
type Processor interface {
	Process(ctx context.Context, p string) (Report, error)
}

// Scheduler drains a Queue, processing one document at a time.
type Scheduler struct {
	queue    *Queue
	proc     Processor
	onReport func(Report)
}

// NewScheduler returns a Scheduler feeding queue into proc. onReport, if
// non-nil, receives every report.
func NewScheduler(queue *Queue, proc Processor, onReport func(Report)) *Scheduler {
	return &Scheduler{queue: queue, proc: proc, onReport: onReport}
}

// Run processes released documents until ctx is done or the queue closes.
// A run that has started is not cancelled: it finishes before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	log := logctx.From(ctx)
	for {
		p, ok := s.queue.Next(ctx)
		if !ok {
			return nil
		}
		log.Debug("processing queued note", "path", p)
		rep, _ := s.proc.Process(context.WithoutCancel(ctx), p)
		if s.onReport != nil {
			s.onReport(rep)
		}
	}
}
