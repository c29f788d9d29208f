package usecase

import (
	"context"
	"sync"
	"time"

	"TradePilot/internal/domain/models"
	domsvc "TradePilot/internal/domain/service"
	xlogger "TradePilot/pkg/logger"
)

// SignalGatherer fans out to all configured signal sources concurrently
// and collects whatever came back in time. A slow or failing analyzer
// never blocks the cycle; its absence simply leaves fewer opinions to
// fuse.
type SignalGatherer struct {
	sources []domsvc.SignalSource
	inbox   *SignalInbox
	timeout time.Duration
	logger  *xlogger.Logger
}

func NewSignalGatherer(sources []domsvc.SignalSource, inbox *SignalInbox, timeout time.Duration, lg *xlogger.Logger) *SignalGatherer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SignalGatherer{sources: sources, inbox: inbox, timeout: timeout, logger: lg}
}

// Gather returns normalized signals for the symbol plus a per-source error
// map for reporting.
func (g *SignalGatherer) Gather(ctx context.Context, symbol string) ([]models.Signal, map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type item struct {
		name string
		sig  models.Signal
		err  error
	}
	ch := make(chan item, len(g.sources))
	var wg sync.WaitGroup

	for _, src := range g.sources {
		wg.Add(1)
		go func(src domsvc.SignalSource) {
			defer wg.Done()
			sig, err := src.Analyze(ctx, symbol)
			ch <- item{src.Name(), sig, err}
		}(src)
	}
	go func() { wg.Wait(); close(ch) }()

	var signals []models.Signal
	errs := map[string]string{}
	for it := range ch {
		if it.err != nil {
			errs[it.name] = it.err.Error()
			if g.logger != nil {
				g.logger.Warn("signal source failed",
					xlogger.String("source", it.name), xlogger.Error(it.err))
			}
			continue
		}
		signals = append(signals, models.NormalizeSignal(it.sig))
	}

	if g.inbox != nil {
		signals = append(signals, g.inbox.Snapshot(symbol)...)
	}
	if len(errs) == 0 {
		errs = nil
	}
	return signals, errs
}
