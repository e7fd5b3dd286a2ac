// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/orientation_widget/internal/config"
)

// formatMessage renders one orientation message as a console line.
func formatMessage(tag string, payload []byte) (string, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", err
	}
	line := fmt.Sprintf("[%-6s] ALPHA=%7.2f  BETA=%7.2f  GAMMA=%7.2f  source=%s",
		tag, m.Alpha, m.Beta, m.Gamma, m.Source)
	if m.Session != "" {
		line += "  session=" + m.Session
	}
	return line, nil
}

// RunConsoleMQTT prints every orientation message until ctx is done.
func RunConsoleMQTT(ctx context.Context) error {
	return runConsoleMQTT(ctx, config.Get(), os.Stdout)
}

func runConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required for the console subscriber")
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	subscribe := func(topic, tag string) error {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			line, err := formatMessage(tag, msg.Payload())
			if err != nil {
				log.Printf("console: %s unmarshal error: %v", tag, err)
				return
			}
			fmt.Fprintln(out, line)
		})
		token.Wait()
		if token.Error() != nil {
			return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
		}
		log.Printf("console: subscribed to %s", topic)
		return nil
	}

	if err := subscribe(cfg.TopicOrientation, "ORIENT"); err != nil {
		return err
	}
	if cfg.TopicOrientationDrag != "" {
		if err := subscribe(cfg.TopicOrientationDrag, "DRAG"); err != nil {
			return err
		}
	}

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}
