// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relabs-tech/orientation_widget/internal/logging"
	"github.com/relabs-tech/orientation_widget/internal/orientation"
)

// Message is the MQTT payload for one orientation change.
type Message struct {
	orientation.DeviceOrientation
	Source  orientation.Source `json:"source"`
	Session string             `json:"session,omitempty"`
	Time    time.Time          `json:"time"`
}

// Publisher sends orientation messages to a broker.
type Publisher interface {
	Publish(topic string, retained bool, msg Message) error
	Close()
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, bool, Message) error { return nil }
func (nopPublisher) Close()                               {}

type mqttPublisher struct {
	client mqtt.Client
	logger *zap.Logger
}

// clientID makes base unique per process so several hosts can share a
// broker.
func clientID(base string) string {
	return base + "-" + uuid.NewString()[:8]
}

// connectMQTT connects to broker or returns the connect error.
func connectMQTT(broker, id string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID(id)).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", broker, token.Error())
	}
	return client, nil
}

// NewPublisher connects to broker. An empty broker gives a publisher that
// drops every message.
func NewPublisher(broker, id string, logger *zap.Logger) (Publisher, error) {
	logger = logging.OrNop(logger)
	if broker == "" {
		logger.Info("MQTT broker not configured, publishing disabled")
		return nopPublisher{}, nil
	}

	client, err := connectMQTT(broker, id)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to MQTT broker", zap.String("broker", broker))
	return &mqttPublisher{client: client, logger: logger}, nil
}

func (p *mqttPublisher) Publish(topic string, retained bool, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal orientation message: %w", err)
	}

	token := p.client.Publish(topic, 0, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	p.logger.Debug("published orientation", zap.String("topic", topic), zap.ByteString("payload", payload))
	return nil
}

func (p *mqttPublisher) Close() {
	p.client.Disconnect(250)
}
