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

package sio

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT is a Couplings that gets requests from subscriptions and
// publishes results.
type MQTT struct {
	Client mqtt.Client

	// SubTopics is a comma-separated list of request topics.  A
	// topic can end in ":QOS".
	SubTopics string

	// ReplyTopic is where results go when the request doesn't
	// give a ReplyTo.  A topic can end in ":QOS".
	ReplyTopic string

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint

	// PublishTimeout bounds waiting for a publish.
	PublishTimeout time.Duration

	Verbose bool
}

// NewMQTT makes an MQTT with a client for the given options.
func NewMQTT(opts *mqtt.ClientOptions, subTopics, replyTopic string) *MQTT {
	return &MQTT{
		Client:         mqtt.NewClient(opts),
		SubTopics:      subTopics,
		ReplyTopic:     replyTopic,
		Quiesce:        100,
		PublishTimeout: 5 * time.Second,
	}
}

func (c *MQTT) logf(format string, args ...interface{}) {
	if c.Verbose {
		log.Printf("MQTT "+format, args...)
	}
}

// Start creates the MQTT session.
func (c *MQTT) Start(ctx context.Context) error {
	c.logf("attempting to connect to broker")
	if token := c.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	c.logf("connected to broker")
	return nil
}

// handle computes the reply (topic and payload) for a request
// payload.
func (c *MQTT) handle(ctx context.Context, p Processor, payload []byte) (string, byte, []byte) {
	topic, qos := parseTopic(c.ReplyTopic)

	var res *Result
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		res = &Result{Error: "can't parse: " + err.Error()}
	} else {
		res = p.Process(ctx, &req)
		if req.ReplyTo != "" {
			topic, qos = parseTopic(req.ReplyTo)
		}
	}

	js, err := json.Marshal(res)
	if err != nil {
		js, _ = json.Marshal(&Result{ID: res.ID, Error: err.Error()})
	}
	return topic, qos, js
}

// Serve subscribes to the request topics and publishes a result for
// each request until ctx is done.
func (c *MQTT) Serve(ctx context.Context, p Processor) error {
	handler := func(client mqtt.Client, msg mqtt.Message) {
		c.logf("incoming: %s %s", msg.Topic(), msg.Payload())
		topic, qos, js := c.handle(ctx, p, msg.Payload())
		if topic == "" {
			log.Printf("MQTT no reply topic for %s", msg.Payload())
			return
		}
		token := client.Publish(topic, qos, false, js)
		if !token.WaitTimeout(c.PublishTimeout) {
			log.Printf("MQTT publish to %s timed out", topic)
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("MQTT publish error %s", err)
		}
	}

	var topics []string
	for _, topic := range strings.Split(c.SubTopics, ",") {
		topic, qos := parseTopic(strings.TrimSpace(topic))
		if topic == "" {
			continue
		}
		c.logf("subscribing to %s (%d)", topic, qos)
		if t := c.Client.Subscribe(topic, qos, handler); t.Wait() && t.Error() != nil {
			return t.Error()
		}
		topics = append(topics, topic)
	}
	if len(topics) == 0 {
		return fmt.Errorf("no subscription topics in %q", c.SubTopics)
	}

	<-ctx.Done()

	if t := c.Client.Unsubscribe(topics...); t.WaitTimeout(time.Second) && t.Error() != nil {
		log.Printf("MQTT unsubscribe error %s", t.Error())
	}
	return nil
}

// Stop terminates the MQTT session.
func (c *MQTT) Stop(context.Context) error {
	c.logf("disconnecting")
	c.Client.Disconnect(c.Quiesce)
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
