// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/relabs-tech/orientation_widget/internal/config"
	"github.com/relabs-tech/orientation_widget/internal/orientation"
)

// feedView pushes every orientation from src into a headless view until
// ctx is done.
func feedView(ctx context.Context, src orientation.Provider, interval time.Duration, view *orientation.View) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			o, err := src.Next()
			if err != nil {
				return fmt.Errorf("mock source: %w", err)
			}
			view.SetDeviceOrientation(&o, orientation.SourceMockFeed)
		}
	}
}

// RunProducer publishes the mock source to MQTT.
func RunProducer(ctx context.Context) error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required for the producer")
	}

	publisher, err := NewPublisher(cfg.MQTTBroker, cfg.MQTTClientIDProducer, nil)
	if err != nil {
		return err
	}
	defer publisher.Close()
	log.Printf("producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	view := orientation.Register(nil)
	view.OnChangeDeviceOrientation(func(o orientation.DeviceOrientation) {
		msg := Message{DeviceOrientation: o, Source: orientation.SourceMockFeed, Time: time.Now()}
		if err := publisher.Publish(cfg.TopicOrientation, true, msg); err != nil {
			log.Printf("producer: %v", err)
		}
	})

	interval := time.Duration(cfg.ProducerIntervalMilli) * time.Millisecond
	return feedView(ctx, orientation.NewMockSource(), interval, view)
}

// RunMockConsole prints the mock source without a broker.
func RunMockConsole(ctx context.Context) error {
	return runMockConsole(ctx, os.Stdout, orientation.NewMockSource(), 100*time.Millisecond)
}

func runMockConsole(ctx context.Context, out io.Writer, src orientation.Provider, interval time.Duration) error {
	view := orientation.Register(nil)
	view.OnChangeDeviceOrientation(func(o orientation.DeviceOrientation) {
		fmt.Fprintf(out, "ALPHA=%7.2f  BETA=%7.2f  GAMMA=%7.2f\n", o.Alpha, o.Beta, o.Gamma)
	})
	return feedView(ctx, src, interval, view)
}
