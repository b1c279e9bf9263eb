package core

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/context"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

type ConnIDGenerator interface {
	Generate(r *http.Request, conn *websocket.Conn) (int, error)
}

type AutoIncrementConnIDGenerator struct {
	counter int64
	mu      sync.Mutex
}

func (g *AutoIncrementConnIDGenerator) Generate(_ *http.Request, _ *websocket.Conn) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return int(g.counter), nil
}

type OnConnect func(int)

type OnDisconnect func(int)

// ConnManager owns every live websocket connection and the channel registry
// that maps a channel name to the connections that joined it. Channels are
// named by the recipient's identity value; publishing to a channel with no
// members is a no-op.
type ConnManager struct {
	conns    *SyncMap[int, *Conn]
	channels *SyncMap[string, map[int]*Conn]

	connWg  *sync.WaitGroup
	context context.Context
	logger  *slog.Logger

	idGenerator ConnIDGenerator

	onConnectionOpened func(int)
	onConnectionClosed func(int)

	receivedEvent chan *Event

	upgrader        websocket.Upgrader
	ReadStreamSize  int
	WriteStreamSize int
}

var defaultUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type ManagerOption func(*ConnManager)

func WithCheckOrigin(f func(r *http.Request) bool) ManagerOption {
	return func(m *ConnManager) {
		m.upgrader.CheckOrigin = f
	}
}

func WithConnIDGenerator(g ConnIDGenerator) ManagerOption {
	return func(m *ConnManager) {
		m.idGenerator = g
	}
}

func NewConnManager(context context.Context, wg *sync.WaitGroup, logger *slog.Logger, opts ...ManagerOption) *ConnManager {
	m := &ConnManager{
		conns:              NewSyncMap[int, *Conn](),
		channels:           NewSyncMap[string, map[int]*Conn](),
		connWg:             wg,
		logger:             logger,
		context:            context,
		upgrader:           defaultUpgrader,
		idGenerator:        &AutoIncrementConnIDGenerator{},
		ReadStreamSize:     100,
		WriteStreamSize:    100,
		onConnectionOpened: func(int) {},
		onConnectionClosed: func(int) {},
	}

	for _, opt := range opts {
		opt(m)
	}

	m.receivedEvent = make(chan *Event, m.ReadStreamSize)

	return m
}

func (m *ConnManager) Receive() <-chan *Event {
	return m.receivedEvent
}

func (m *ConnManager) OnConnectionOpened(f func(int)) {
	m.onConnectionOpened = f
}

func (m *ConnManager) OnConnectionClosed(f func(int)) {
	m.onConnectionClosed = f
}

// Connect upgrades the request to a websocket connection and starts its read
// and write loops. The connection joins no channel until a join event
// arrives on it.
func (m *ConnManager) Connect(w http.ResponseWriter, r *http.Request) error {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("Upgrade: %w", err)
	}

	id, err := m.idGenerator.Generate(r, conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("Generate: %w", err)
	}

	wsConn := &Conn{
		id:          id,
		conn:        conn,
		context:     m.context,
		writeStream: make(chan *Event, m.WriteStreamSize),
		readStream:  m.receivedEvent,
		ticker:      time.NewTicker(pingPeriod),
		logger:      m.logger.With(slog.Int("connection", id)),
		notifyDisconnect: func() {
			m.disconnect(id)
		},
	}
	m.conns.Store(id, wsConn)

	m.connWg.Add(1)
	go func() {
		defer m.connWg.Done()
		wsConn.readLoop()
	}()
	m.connWg.Add(1)
	go func() {
		defer m.connWg.Done()
		wsConn.writeLoop()
	}()

	m.onConnectionOpened(id)

	return nil
}

// Join adds the connection to the named channel. Joining a channel the
// connection is already in is a no-op.
func (m *ConnManager) Join(connID int, channel string) {
	conn, ok := m.conns.Load(connID)
	if !ok {
		return
	}
	conn.joinChannel(channel)
	joined := false
	m.channels.Update(channel, func(members map[int]*Conn, ok bool) (map[int]*Conn, bool) {
		// disconnect removes the connection from conns before it walks the
		// channel registry. A connection gone from conns by now must not be
		// registered: its registry entry would outlive it and a later
		// Publish would write to its closed stream.
		if _, live := m.conns.Load(connID); !live {
			return members, ok
		}
		if !ok {
			members = make(map[int]*Conn)
		}
		members[connID] = conn
		joined = true
		return members, true
	})
	if joined {
		m.logger.Debug(fmt.Sprintf("connection %d joined channel %s", connID, channel))
	}
}

func (m *ConnManager) disconnect(connID int) {
	conn, ok := m.conns.LoadAndDelete(connID)
	if !ok {
		return
	}

	for _, channel := range conn.joinedChannels() {
		m.channels.Update(channel, func(members map[int]*Conn, ok bool) (map[int]*Conn, bool) {
			if !ok {
				return nil, false
			}
			delete(members, connID)
			return members, len(members) > 0
		})
	}

	conn.close()
	m.onConnectionClosed(connID)
}

// Publish delivers the event to every connection in the channel. It is fire
// and forget: a channel with no members is a no-op, and a connection whose
// write buffer is full has the event dropped rather than stalling the caller.
func (m *ConnManager) Publish(channel string, e *Event) {
	m.channels.With(channel, func(members map[int]*Conn, ok bool) {
		if !ok {
			return
		}
		for _, conn := range members {
			select {
			case conn.writeStream <- e:
			default:
				m.logger.Error(fmt.Sprintf("connection %d write buffer full: dropping %s", conn.id, e.Type))
			}
		}
	})
}

// ChannelSize returns the number of connections in the channel.
func (m *ConnManager) ChannelSize(channel string) int {
	var n int
	m.channels.With(channel, func(members map[int]*Conn, ok bool) {
		n = len(members)
	})
	return n
}
