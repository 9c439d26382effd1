package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/Borislavv/go-freq-sketch/config"
	"github.com/Borislavv/go-freq-sketch/internal/shared/bytes"
)

// Source exposes cumulative sketch counters for sampling.
type Source interface {
	Stats() Stats
}

type Logger interface {
	Interval() time.Duration
	Close() error
}

// Logs periodically emits per-interval deltas of the source's counters.
type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.TelemetryCfg
	logger   *slog.Logger
	src      Source
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.TelemetryCfg,
	logger *slog.Logger,
	src Source,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	interval := time.Duration(0)
	if cfg.Enabled() {
		interval = cfg.LogsInterval
	}
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		src:      src,
		interval: interval,
	}).run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg.Enabled() && l.interval > 0 {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	prev := l.src.Stats()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := l.src.Stats()
			d := deltaStats(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}

			l.logger.Info("frequency_sketch",
				append(common,
					"increments", d.Increments,
					"saturated", d.Saturated,
					"agings", d.Agings,
					"resizes", d.Resizes,
					"slots", cur.TableLen,
					"size", bytes.FmtMem(cur.MemBytes),
				)...,
			)

			if d.Allowed > 0 || d.Rejected > 0 {
				l.logger.Info("admission_controller",
					append(common,
						"allowed", d.Allowed,
						"not_allowed", d.Rejected,
					)...,
				)
			}
		}
	}
}
