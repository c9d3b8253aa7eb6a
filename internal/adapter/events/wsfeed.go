package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Message is the JSON frame observers receive.
type Message struct {
	Type       ports.EventKind    `json:"type"`
	Intent     string             `json:"intent,omitempty"`
	IntentID   string             `json:"intent_id,omitempty"`
	Step       *int               `json:"step,omitempty"`
	Message    string             `json:"message,omitempty"`
	Snapshot   *snapshot.Snapshot `json:"snapshot,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func MessageOf(evt ports.Event) Message {
	m := Message{
		Type:       evt.Kind,
		Intent:     evt.Intent,
		IntentID:   evt.IntentID,
		Message:    evt.Message,
		Snapshot:   evt.Snapshot,
		OccurredAt: evt.OccurredAt,
	}
	if evt.Snapshot != nil {
		step := evt.Snapshot.Step
		m.Step = &step
	}
	return m
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed streams events to websocket observers. Slow observers whose buffer
// fills up are disconnected rather than blocking the publisher.
type Feed struct {
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
	// Current, when set, seeds each new observer with the present state.
	Current func() (snapshot.Snapshot, bool)

	mu      sync.Mutex
	clients map[*feedClient]struct{}
	closed  bool
}

func NewFeed(log logrus.FieldLogger) *Feed {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Feed{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: map[*feedClient]struct{}{},
	}
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	c := &feedClient{conn: conn, send: make(chan []byte, sendBuffer)}
	if f.Current != nil {
		if s, ok := f.Current(); ok {
			if b, err := json.Marshal(MessageOf(ports.Event{Kind: ports.EventStateUpdated, Snapshot: &s, OccurredAt: time.Now()})); err == nil {
				c.send <- b
			}
		}
	}
	if !f.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	f.log.WithField("remote", r.RemoteAddr).Info("observer connected")
	go f.writePump(c)
	go f.readPump(c)
}

func (f *Feed) register(c *feedClient) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	return true
}

func (f *Feed) unregister(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
}

func (f *Feed) Publish(evt ports.Event) {
	b, err := json.Marshal(MessageOf(evt))
	if err != nil {
		f.log.WithError(err).Error("encode feed message")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- b:
		default:
			delete(f.clients, c)
			close(c.send)
			f.log.Warn("dropping slow observer")
		}
	}
}

func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every observer and refuses new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for c := range f.clients {
		delete(f.clients, c)
		close(c.send)
	}
}

// readPump only keeps the connection alive; observers send nothing we use.
func (f *Feed) readPump(c *feedClient) {
	defer f.unregister(c)
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		f.log.WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.log.WithError(err).Debug("observer read failed")
			}
			return
		}
	}
}

func (f *Feed) writePump(c *feedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			f.log.WithError(err).Debug("close observer connection")
		}
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
