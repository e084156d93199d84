// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/sosodev/duration"

	"github.com/alx-cc/industrial-sensor-sim/mqtt"
	"github.com/alx-cc/industrial-sensor-sim/pipeline"
	"github.com/alx-cc/industrial-sensor-sim/ring"
	"github.com/alx-cc/industrial-sensor-sim/sensor"
)

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevel(),
	}))

	mqttOpts := []mqtt.PublisherOption{mqtt.WithLogger(log)}
	if os.Getenv("MQTT_CLIENT_ID") == "" {
		// Keep the generated ID within the 23-byte client ID limit.
		mqttOpts = append(mqttOpts,
			mqtt.WithClientID("telemetryd-"+uuid.NewString()[:8]))
	}
	publisher, err := mqtt.NewPublisherFromEnv(mqttOpts...)
	check(log, err)

	check(log, publisher.Connect(ctx))
	defer publisher.Disconnect()

	sim := sensor.NewSim(sensor.DefaultConfig(), nil, nil)

	opts, err := pipelineOptionsFromEnv()
	check(log, err)
	opts = append(opts, pipeline.WithLogger(log))

	p, err := pipeline.New(sim, publisher, opts...)
	check(log, err)

	log.Info("pipeline starting",
		"topic", publisher.Topic(),
		"client_id", publisher.ID(),
		"window", p.Window(),
	)

	err = p.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("pipeline failed", "error", err)
		os.Exit(1)
	}

	stats := p.Stats()
	log.Info("pipeline finished",
		"produced", stats.Produced,
		"consumed", stats.Consumed,
		"dropped", stats.Dropped,
		"publish_failures", stats.PublishFailures,
	)
}

func pipelineOptionsFromEnv() ([]pipeline.Option, error) {
	var opts []pipeline.Option

	if val := os.Getenv("SIM_SAMPLE_PERIOD"); val != "" {
		period, err := parseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid SIM_SAMPLE_PERIOD: %w", err)
		}
		opts = append(opts, pipeline.WithSamplePeriod(period))
	}

	if val := os.Getenv("SIM_SAMPLE_COUNT"); val != "" {
		count, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SIM_SAMPLE_COUNT: %w", err)
		}
		opts = append(opts, pipeline.WithSampleCount(count))
	}

	if val := os.Getenv("SIM_WINDOW"); val != "" {
		window, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid SIM_WINDOW: %w", err)
		}
		opts = append(opts, pipeline.WithWindow(uint32(window)))
	}

	if val := os.Getenv("SIM_DEADLINE"); val != "" {
		deadline, err := parseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid SIM_DEADLINE: %w", err)
		}
		opts = append(opts, pipeline.WithDeadline(deadline))
	}

	if val := os.Getenv("SIM_RING_CAPACITY"); val != "" {
		capacity, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid SIM_RING_CAPACITY: %w", err)
		}
		opts = append(opts, pipeline.WithRingCapacity(uint32(capacity)))
	}

	if val := os.Getenv("SIM_RING_POLICY"); val != "" {
		switch val {
		case "reject":
			opts = append(opts, pipeline.WithRingPolicy(ring.RejectOnFull))
		case "drop_oldest":
			opts = append(opts, pipeline.WithRingPolicy(ring.DropOldest))
		default:
			return nil, fmt.Errorf("invalid SIM_RING_POLICY %q", val)
		}
	}

	return opts, nil
}

// parseDuration accepts both Go duration strings (e.g. "100ms") and ISO 8601
// durations (e.g. "PT0.1S").
func parseDuration(val string) (time.Duration, error) {
	if d, err := time.ParseDuration(val); err == nil {
		return d, nil
	}
	iso, err := duration.Parse(val)
	if err != nil {
		return 0, err
	}
	return iso.ToTimeDuration(), nil
}

func logLevel() slog.Level {
	if val := os.Getenv("SIM_LOG_LEVEL"); val != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(val)); err == nil {
			return level
		}
	}
	return slog.LevelInfo
}

func check(log *slog.Logger, e error) {
	if e != nil {
		log.Error("fatal", "error", e)
		os.Exit(1)
	}
}
