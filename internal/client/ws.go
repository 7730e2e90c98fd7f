package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
)

type WSConfig struct {
	URL              string
	HandshakeTimeout time.Duration
	AckTimeout       time.Duration
	AwaitTimeout     time.Duration
}

// WS opens telemetry subscriptions over the platform websocket API. One
// subscription is shared by all checkers within a run; the orchestrator owns
// its lifecycle.
type WS struct {
	cfg WSConfig
	log *zap.Logger
}

var _ monitoring.Subscriber = (*WS)(nil)

func NewWS(cfg WSConfig, log *zap.Logger) *WS {
	return &WS{cfg: cfg, log: log.With(zap.String("component", "client.ws"))}
}

type subscribeCmd struct {
	CmdID     int      `json:"cmdId"`
	DeviceIDs []string `json:"deviceIds"`
	Key       string   `json:"key"`
}

// wsEnvelope carries both subscription acks (CmdID/Status set) and telemetry
// updates (DeviceID/Key/Value set).
type wsEnvelope struct {
	CmdID    int    `json:"cmdId,omitempty"`
	Status   string `json:"status,omitempty"`
	DeviceID string `json:"deviceId,omitempty"`
	Key      string `json:"key,omitempty"`
	Value    string `json:"value,omitempty"`
}

// Subscribe dials the websocket, requests telemetry for all devices under
// the given key and blocks until the remote side acknowledges.
func (w *WS) Subscribe(ctx context.Context, token string, deviceIDs []string, key string) (monitoring.Subscription, error) {
	dialer := websocket.Dialer{HandshakeTimeout: w.cfg.HandshakeTimeout}
	header := http.Header{}
	header.Set("X-Authorization", "Bearer "+token)

	conn, resp, err := dialer.DialContext(ctx, w.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("ws dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("ws dial: %w", err)
	}

	cmd := subscribeCmd{CmdID: 1, DeviceIDs: deviceIDs, Key: key}
	if err := conn.WriteJSON(cmd); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ws subscribe: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(w.cfg.AckTimeout))
	var ack wsEnvelope
	if err := conn.ReadJSON(&ack); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ws subscribe ack: %w", err)
	}
	if ack.CmdID != cmd.CmdID || ack.Status != "ok" {
		_ = conn.Close()
		return nil, fmt.Errorf("ws subscribe rejected: cmd %d status %q", ack.CmdID, ack.Status)
	}
	_ = conn.SetReadDeadline(time.Time{})

	sub := &wsSubscription{
		conn:         conn,
		log:          w.log,
		key:          key,
		awaitTimeout: w.cfg.AwaitTimeout,
		updates:      make(map[string]chan string, len(deviceIDs)),
		done:         make(chan struct{}),
	}
	for _, id := range deviceIDs {
		sub.updates[id] = make(chan string, 4)
	}
	go sub.readLoop()
	return sub, nil
}

type wsSubscription struct {
	conn         *websocket.Conn
	log          *zap.Logger
	key          string
	awaitTimeout time.Duration
	updates      map[string]chan string

	done      chan struct{}
	closeOnce sync.Once
}

func (s *wsSubscription) readLoop() {
	defer s.closeOnce.Do(s.teardown)
	for {
		var env wsEnvelope
		if err := s.conn.ReadJSON(&env); err != nil {
			select {
			case <-s.done:
			default:
				s.log.Warn("ws read", zap.Error(err))
			}
			return
		}
		if env.Key != s.key || env.DeviceID == "" {
			continue
		}
		ch, ok := s.updates[env.DeviceID]
		if !ok {
			continue
		}
		select {
		case ch <- env.Value:
		default:
			// slow consumer, drop the oldest semantics are not needed here
		}
	}
}

// Await blocks until the next telemetry value for the device arrives over
// the shared channel.
func (s *wsSubscription) Await(ctx context.Context, deviceID string) (string, error) {
	ch, ok := s.updates[deviceID]
	if !ok {
		return "", fmt.Errorf("device %s not covered by subscription", deviceID)
	}
	timer := time.NewTimer(s.awaitTimeout)
	defer timer.Stop()
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.done:
		return "", fmt.Errorf("subscription closed while awaiting device %s", deviceID)
	case <-timer.C:
		return "", fmt.Errorf("no telemetry for device %s within %s", deviceID, s.awaitTimeout)
	}
}

func (s *wsSubscription) Close() error {
	s.closeOnce.Do(s.teardown)
	return nil
}

func (s *wsSubscription) teardown() {
	close(s.done)
	_ = s.conn.Close()
}
