package stream

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix = "runcoach:"
	channelSuffix = ":broadcast"
	sendBuffer    = 64
)

// Hub fans payloads out to the clients registered on a topic. With a redis
// client it also relays broadcasts to hubs running in other processes.
type Hub struct {
	redis   *redis.Client
	origin  string
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

type Client struct {
	Topic string
	Send  chan []byte
}

type envelope struct {
	Origin  string `json:"origin"`
	Payload []byte `json:"payload"`
}

func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		redis:   redisClient,
		origin:  uuid.NewString(),
		clients: map[string]map[*Client]struct{}{},
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if redisClient == nil {
		close(h.done)
		return h
	}
	pubsub := redisClient.PSubscribe(ctx, channelPrefix+"*"+channelSuffix)
	waitCtx, stop := context.WithTimeout(ctx, 3*time.Second)
	if _, err := pubsub.Receive(waitCtx); err != nil {
		log.Printf("stream: redis subscribe: %v", err)
	}
	stop()
	go h.subscribeRedis(ctx, pubsub)
	return h
}

func (h *Hub) Register(topic string) *Client {
	client := &Client{
		Topic: topic,
		Send:  make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[topic] == nil {
		h.clients[topic] = map[*Client]struct{}{}
	}
	h.clients[topic][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topicClients, ok := h.clients[client.Topic]
	if !ok {
		return
	}
	if _, ok := topicClients[client]; !ok {
		return
	}
	delete(topicClients, client)
	if len(topicClients) == 0 {
		delete(h.clients, client.Topic)
	}
	close(client.Send)
}

// Broadcast delivers payload to local subscribers of topic and publishes it
// for other instances. Slow clients miss messages instead of blocking.
func (h *Hub) Broadcast(topic string, payload []byte) {
	h.deliver(topic, payload)

	if h.redis == nil {
		return
	}
	msg, err := json.Marshal(envelope{Origin: h.origin, Payload: payload})
	if err != nil {
		log.Printf("stream: encode envelope: %v", err)
		return
	}
	if err := h.redis.Publish(context.Background(), redisChannel(topic), msg).Err(); err != nil {
		log.Printf("stream: redis publish error: %v", err)
	}
}

// Close stops relaying redis messages. Registered clients stay open.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.cancel()
		<-h.done
	})
}

func (h *Hub) deliver(topic string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[topic] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis(ctx context.Context, pubsub *redis.PubSub) {
	defer close(h.done)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("stream: bad envelope on %s: %v", msg.Channel, err)
				continue
			}
			if env.Origin == h.origin {
				continue
			}
			h.deliver(topicFromChannel(msg.Channel), env.Payload)
		}
	}
}

func redisChannel(topic string) string {
	return channelPrefix + topic + channelSuffix
}

// topicFromChannel is the inverse of redisChannel; "" for foreign channels.
func topicFromChannel(ch string) string {
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
