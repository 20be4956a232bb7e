/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig configures the MQTT bridge.
type MQTTConfig struct {
	Broker    string `yaml:"broker"`
	ClientId  string `yaml:"clientId"`
	KeepAlive int    `yaml:"keepAlive"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Reconnect bool   `yaml:"reconnect"`
	Clean     bool   `yaml:"clean"`

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint `yaml:"quiesce"`

	CertFile string `yaml:"certFile"`
	KeyFile  string `yaml:"keyFile"`
	CAFile   string `yaml:"caFile"`
	Insecure bool   `yaml:"insecure"`

	// RequestTopics are the (comma-separated) subscription topics.
	// A topic can be of the form TOPIC:QOS.
	RequestTopics string `yaml:"requestTopics"`

	// ResponseTopic is where Responses go when a Request has no
	// ReplyTo.
	ResponseTopic string `yaml:"responseTopic"`
}

// MQTTCouplings connects the Service to an MQTT broker.
type MQTTCouplings struct {
	Client  mqtt.Client
	Service *Service
	Config  *MQTTConfig
}

func NewMQTTCouplings(ctx context.Context, s *Service, cfg *MQTTConfig) (*MQTTCouplings, error) {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error ", 0)

	opts := mqtt.NewClientOptions()

	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientId)
	if 0 < cfg.KeepAlive {
		opts.SetKeepAlive(time.Second * time.Duration(cfg.KeepAlive))
	}

	opts.Username = cfg.Username
	opts.Password = cfg.Password
	opts.AutoReconnect = cfg.Reconnect
	opts.CleanSession = cfg.Clean

	tlsConf := &tls.Config{
		InsecureSkipVerify: cfg.Insecure,
	}

	if cfg.CAFile != "" {
		rootCAs, _ := x509.SystemCertPool()
		if rootCAs == nil {
			rootCAs = x509.NewCertPool()
		}
		certs, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("couldn't read '%s': %w", cfg.CAFile, err)
		}
		if ok := rootCAs.AppendCertsFromPEM(certs); !ok {
			log.Println("No certs appended, using system certs only")
		}
		tlsConf.RootCAs = rootCAs
	}

	if cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		tlsConf.Certificates = []tls.Certificate{cert}
	}

	opts.SetTLSConfig(tlsConf)

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	c := &MQTTCouplings{
		Service: s,
		Config:  cfg,
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		topic, js := c.handle(ctx, msg.Topic(), msg.Payload())
		if topic == "" {
			return
		}
		topic, qos := parseTopic(topic)
		token := client.Publish(topic, qos, false, js)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("MQTT publish error: %s", err)
		}
	}

	c.Client = mqtt.NewClient(opts)

	return c, nil
}

// handle processes an incoming payload and returns the topic and
// payload for the Response.
func (c *MQTTCouplings) handle(ctx context.Context, topic string, payload []byte) (string, []byte) {
	c.Service.logf("MQTT incoming: %s %s", topic, payload)

	var (
		req  Request
		resp *Response
	)
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("Couldn't JSON-parse payload: %s", payload)
		resp = &Response{
			Err: (&BadRequest{err.Error()}).Error(),
		}
	} else {
		resp, _ = c.Service.Decide(ctx, &req)
	}

	to := c.Config.ResponseTopic
	if req.ReplyTo != "" {
		to = req.ReplyTo
	}
	if to == "" {
		log.Printf("MQTT no topic for response to %s", resp.Id)
		return "", nil
	}

	js, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to marshal %#v", resp)
		return "", nil
	}
	return to, js
}

// Start creates the MQTT session.
func (c *MQTTCouplings) Start(ctx context.Context) error {
	log.Printf("Attempting to connect to broker %s", c.Config.Broker)
	if token := c.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("Connected to broker")

	for _, topic := range strings.Split(c.Config.RequestTopics, ",") {
		topic, qos := parseTopic(strings.TrimSpace(topic))
		if topic == "" {
			continue
		}
		log.Printf("Subscribing to %s (%d)", topic, qos)
		if t := c.Client.Subscribe(topic, qos, nil); t.Wait() && t.Error() != nil {
			return t.Error()
		}
	}

	return nil
}

// Stop terminates the MQTT session.
func (c *MQTTCouplings) Stop(ctx context.Context) error {
	log.Printf("Disconnecting")
	c.Client.Disconnect(c.Config.Quiesce)
	return nil
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0
	}
	var qos byte
	if _, err := fmt.Sscanf(s[i+1:], "%d", &qos); err != nil || 2 < qos {
		return s, 0
	}
	return s[:i], qos
}
