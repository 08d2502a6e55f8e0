package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Belphemur/Subtirrent/internal/client"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/services"
)

const (
	defaultProbeTimeout   = 60 * time.Second
	defaultConvertTimeout = 10 * time.Minute
)

// pipelineRuntime holds the wired pipeline and everything that must be closed with it.
type pipelineRuntime struct {
	pipeline services.Pipeline
	streams  services.StreamFinder
	closers  []func() error
}

func newPipelineRuntime(cfg *config.Config) (*pipelineRuntime, error) {
	rt := &pipelineRuntime{}

	upstream, err := client.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}
	rt.closers = append(rt.closers, upstream.Close)

	locator, err := services.OpenMediaLocator(cfg, upstream)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.closers = append(rt.closers, locator.Close)

	store, err := services.OpenSubtitleStore(cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.closers = append(rt.closers, store.Close)

	prober := newProber(cfg)
	converter := services.NewFFmpegConverter(
		cfg.FFmpeg.FFmpegPath,
		config.ParseDuration("ffmpeg.convert_timeout", cfg.FFmpeg.ConvertTimeout, defaultConvertTimeout),
	)

	rt.pipeline = services.NewPipeline(locator, prober, store, converter, cfg.BaseURL)
	rt.streams = services.NewStreamFinder(upstream)
	return rt, nil
}

func newProber(cfg *config.Config) services.TrackProber {
	return services.NewFFprobeProber(
		cfg.FFmpeg.FFprobePath,
		config.ParseDuration("ffmpeg.probe_timeout", cfg.FFmpeg.ProbeTimeout, defaultProbeTimeout),
	)
}

// Close releases resources in reverse creation order.
func (rt *pipelineRuntime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
