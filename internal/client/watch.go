package client

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/schugaa/schugaa/internal/metrics"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Watch runs the background poller until interrupted, rendering each
// completed fetch to the terminal. When metricsListen is non-empty a
// prometheus endpoint is served there.
func Watch(metricsListen string) error {
	log := logrus.New()

	settings, err := LoadSettings()
	if err != nil {
		return err
	}
	if settings.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		})
	}

	s, err := newStack(nil, log)
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	if metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", rec.Handler())
		go func() {
			if err := http.ListenAndServe(metricsListen, mux); err != nil {
				log.WithError(err).Error("metrics listener stopped")
			}
		}()
	}

	poller := NewPoller(s.agg, settings, rec, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go poller.Run(ctx)

	// Coalesce render bursts; readings can arrive back to back right after
	// startup.
	var latest Result
	render := debounce.New(500 * time.Millisecond)

	for {
		select {
		case <-ctx.Done():
			return nil
		case result := <-poller.Results():
			latest = result
			render(func() {
				if latest.Err != nil {
					fmt.Printf("%s  fetch error: %v\n", latest.At.Format(time.Kitchen), latest.Err)
					return
				}
				fmt.Printf("%s  %s\n", latest.At.Format(time.Kitchen), RenderReading(latest.Reading, s.cfg.Unit))
			})
		}
	}
}
