package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"snowglobe/internal/snowfall"
)

type frameTarget interface {
	Frame(ctx context.Context) (snowfall.TickStats, error)
}

type tickerFactory func(time.Duration) (<-chan time.Time, func())

func defaultTickerFactory() tickerFactory {
	return func(d time.Duration) (<-chan time.Time, func()) {
		ticker := time.NewTicker(d)
		return ticker.C, ticker.Stop
	}
}

// frameLoop drives the card at a fixed frame rate. A failed frame is logged
// and the loop carries on with the next one.
type frameLoop struct {
	target    frameTarget
	interval  time.Duration
	logger    *zap.SugaredLogger
	wg        sync.WaitGroup
	newTicker tickerFactory
}

func newFrameLoop(target frameTarget, interval time.Duration, logger *zap.SugaredLogger) *frameLoop {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &frameLoop{
		target:    target,
		interval:  interval,
		logger:    logger,
		newTicker: defaultTickerFactory(),
	}
}

func (l *frameLoop) Start(ctx context.Context) {
	if l == nil || l.target == nil {
		return
	}
	l.wg.Add(1)
	go l.run(ctx)
}

func (l *frameLoop) run(ctx context.Context) {
	defer l.wg.Done()
	if l.newTicker == nil {
		l.newTicker = defaultTickerFactory()
	}

	tickerC, stop := l.newTicker(l.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tickerC:
			if _, err := l.target.Frame(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Errorw("frame failed", "error", err)
			}
		}
	}
}

func (l *frameLoop) Wait() {
	if l == nil {
		return
	}
	l.wg.Wait()
}
