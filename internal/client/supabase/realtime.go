package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultHeartbeat = 30 * time.Second
	joinTimeout      = 10 * time.Second
)

// PostgresChange selects the row changes a subscription receives.
type PostgresChange struct {
	Event  string `json:"event"` // INSERT, UPDATE, DELETE or *
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"` // e.g. "user_id=eq.<uuid>"
}

// Change is one row change pushed by the server.
type Change struct {
	Type            string          `json:"type"`
	Schema          string          `json:"schema"`
	Table           string          `json:"table"`
	Record          json.RawMessage `json:"record"`
	OldRecord       json.RawMessage `json:"old_record"`
	CommitTimestamp string          `json:"commit_timestamp"`
}

// Decode unmarshals the new row into v.
func (c Change) Decode(v any) error {
	return json.Unmarshal(c.Record, v)
}

// Handler receives changes on the connection's read goroutine; it must not
// block.
type Handler func(Change)

type inMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

type outMessage struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	Ref     string `json:"ref"`
	JoinRef string `json:"join_ref,omitempty"`
}

type reply struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// Subscription is one joined channel.
type Subscription struct {
	rt      *Realtime
	topic   string
	joinRef string
	handler Handler
}

func (s *Subscription) Topic() string { return s.topic }

// Realtime is a Phoenix-channel websocket connection to Supabase Realtime.
// A Realtime is not reusable after Close.
type Realtime struct {
	client    *Client
	url       string
	log       logging.Logger
	heartbeat time.Duration

	writeMu sync.Mutex
	conn    *websocket.Conn

	mu        sync.Mutex
	ref       int
	subs      map[string]*Subscription
	pending   map[string]chan reply
	lastToken string
	closed    bool

	done chan struct{}
	wg   sync.WaitGroup
}

// Realtime returns an unconnected realtime client for the project.
func (c *Client) Realtime() *Realtime {
	u, _ := url.Parse(c.baseURL)
	if u == nil {
		u = &url.URL{}
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/realtime/v1/websocket"
	u.RawQuery = url.Values{"apikey": {c.apiKey}, "vsn": {"1.0.0"}}.Encode()

	return &Realtime{
		client:    c,
		url:       u.String(),
		log:       c.log.With("component", "realtime"),
		heartbeat: defaultHeartbeat,
		subs:      make(map[string]*Subscription),
		pending:   make(map[string]chan reply),
		done:      make(chan struct{}),
	}
}

// Connect dials the websocket and starts the read and heartbeat loops.
func (r *Realtime) Connect(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("%w: realtime dial: %v", common.ErrUnavailable, err)
	}
	r.conn = conn

	r.wg.Add(2)
	go r.readLoop(conn)
	go r.heartbeatLoop()

	r.log.Debug(ctx, "realtime connected")
	return nil
}

// Done is closed when the connection ends, either by Close or by the server.
func (r *Realtime) Done() <-chan struct{} {
	return r.done
}

// Subscribe joins a new channel for pc and waits for the server to accept
// the join.
func (r *Realtime) Subscribe(ctx context.Context, pc PostgresChange, h Handler) (*Subscription, error) {
	if pc.Schema == "" {
		pc.Schema = "public"
	}
	if pc.Event == "" {
		pc.Event = "*"
	}
	if err := r.Connect(ctx); err != nil {
		return nil, err
	}

	token := r.client.accessToken()

	r.mu.Lock()
	sub := &Subscription{
		rt:      r,
		topic:   "realtime:" + uuid.NewString(),
		joinRef: r.nextRefLocked(),
		handler: h,
	}
	r.subs[sub.topic] = sub
	wait := make(chan reply, 1)
	r.pending[sub.joinRef] = wait
	r.lastToken = token
	r.mu.Unlock()

	join := outMessage{
		Topic: sub.topic,
		Event: "phx_join",
		Payload: map[string]any{
			"config": map[string]any{
				"broadcast":        map[string]any{"self": false},
				"presence":         map[string]any{"key": ""},
				"postgres_changes": []PostgresChange{pc},
			},
			"access_token": token,
		},
		Ref:     sub.joinRef,
		JoinRef: sub.joinRef,
	}
	if err := r.write(join); err != nil {
		r.forget(sub)
		return nil, err
	}

	timer := time.NewTimer(joinTimeout)
	defer timer.Stop()

	select {
	case rep := <-wait:
		if rep.Status != "ok" {
			r.forget(sub)
			return nil, fmt.Errorf("realtime join %s: %s %s", pc.Table, rep.Status, string(rep.Response))
		}
	case <-ctx.Done():
		r.forget(sub)
		return nil, ctx.Err()
	case <-timer.C:
		r.forget(sub)
		return nil, fmt.Errorf("%w: realtime join %s timed out", common.ErrUnavailable, pc.Table)
	case <-r.done:
		r.forget(sub)
		return nil, fmt.Errorf("%w: realtime connection closed", common.ErrUnavailable)
	}

	r.log.Debug(ctx, "realtime subscribed", "topic", sub.topic, "table", pc.Table, "filter", pc.Filter)
	return sub, nil
}

// Unsubscribe leaves the channel. Changes stop being delivered immediately.
func (r *Realtime) Unsubscribe(sub *Subscription) error {
	r.mu.Lock()
	_, ok := r.subs[sub.topic]
	delete(r.subs, sub.topic)
	ref := r.nextRefLocked()
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return r.write(outMessage{
		Topic:   sub.topic,
		Event:   "phx_leave",
		Payload: map[string]any{},
		Ref:     ref,
		JoinRef: sub.joinRef,
	})
}

// Close leaves every channel and closes the connection.
func (r *Realtime) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	subs := make([]*Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		subs = append(subs, s)
	}
	r.mu.Unlock()

	for _, s := range subs {
		_ = r.Unsubscribe(s)
	}

	r.writeMu.Lock()
	conn := r.conn
	var err error
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = conn.Close()
	}
	r.writeMu.Unlock()

	r.finish()
	r.wg.Wait()

	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("realtime close: %w", err)
	}
	return nil
}

func (r *Realtime) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

func (r *Realtime) forget(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, sub.topic)
	delete(r.pending, sub.joinRef)
}

func (r *Realtime) nextRefLocked() string {
	r.ref++
	return strconv.Itoa(r.ref)
}

func (r *Realtime) write(m outMessage) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.conn == nil {
		return fmt.Errorf("%w: realtime not connected", common.ErrUnavailable)
	}
	if err := r.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("%w: realtime write: %v", common.ErrUnavailable, err)
	}
	return nil
}

func (r *Realtime) readLoop(conn *websocket.Conn) {
	defer r.wg.Done()
	defer r.finish()

	for {
		var m inMessage
		if err := conn.ReadJSON(&m); err != nil {
			r.mu.Lock()
			closed := r.closed
			r.mu.Unlock()
			if !closed {
				r.log.Warn(context.Background(), "realtime connection lost", "error", err)
			}
			return
		}
		r.dispatch(m)
	}
}

func (r *Realtime) dispatch(m inMessage) {
	switch m.Event {
	case "phx_reply":
		var rep reply
		_ = json.Unmarshal(m.Payload, &rep)

		r.mu.Lock()
		wait, ok := r.pending[m.Ref]
		delete(r.pending, m.Ref)
		r.mu.Unlock()
		if ok {
			wait <- rep
		}

	case "postgres_changes":
		var p struct {
			Data Change `json:"data"`
		}
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			r.log.Warn(context.Background(), "realtime: bad change payload", "topic", m.Topic, "error", err)
			return
		}
		r.deliver(m.Topic, p.Data)

	case "INSERT", "UPDATE", "DELETE":
		var c Change
		if err := json.Unmarshal(m.Payload, &c); err != nil {
			r.log.Warn(context.Background(), "realtime: bad change payload", "topic", m.Topic, "error", err)
			return
		}
		if c.Type == "" {
			c.Type = m.Event
		}
		r.deliver(m.Topic, c)

	case "phx_error", "phx_close":
		r.log.Warn(context.Background(), "realtime channel ended", "topic", m.Topic, "event", m.Event)

	case "system":
		r.log.Debug(context.Background(), "realtime system message", "topic", m.Topic, "payload", string(m.Payload))
	}
}

func (r *Realtime) deliver(topic string, c Change) {
	r.mu.Lock()
	sub, ok := r.subs[topic]
	r.mu.Unlock()
	if ok && sub.handler != nil {
		sub.handler(c)
	}
}

// heartbeatLoop keeps the socket alive and pushes a refreshed access token
// to every joined channel.
func (r *Realtime) heartbeatLoop() {
	defer r.wg.Done()

	t := time.NewTicker(r.heartbeat)
	defer t.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-t.C:
		}

		r.mu.Lock()
		ref := r.nextRefLocked()
		token := r.client.accessToken()
		var refreshed []*Subscription
		if token != r.lastToken {
			r.lastToken = token
			for _, s := range r.subs {
				refreshed = append(refreshed, s)
			}
		}
		r.mu.Unlock()

		if err := r.write(outMessage{Topic: "phoenix", Event: "heartbeat", Payload: map[string]any{}, Ref: ref}); err != nil {
			r.log.Warn(context.Background(), "realtime heartbeat failed", "error", err)
			continue
		}
		for _, s := range refreshed {
			_ = r.write(outMessage{
				Topic:   s.topic,
				Event:   "access_token",
				Payload: map[string]any{"access_token": token},
				Ref:     r.newRef(),
				JoinRef: s.joinRef,
			})
		}
	}
}

func (r *Realtime) newRef() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextRefLocked()
}
