// Package websocket pushes collection change notifications to the browser
// sessions that did not make the change.
package websocket

import (
	"context"
	"sync"
	"time"

	"notebook-console/internal/store"

	"github.com/rs/zerolog"
)

type ClientMessage struct {
	Client  *Client
	Message *Message
}

type Config struct {
	MaxConnPerSession int
	WriteWait         time.Duration
	PongWait          time.Duration
	PingPeriod        time.Duration
	Logger            zerolog.Logger
}

type Manager struct {
	clients           map[string]*Client
	sessionIndex      map[string]map[string]bool
	clientsMutex      sync.RWMutex
	Register          chan *Client
	Unregister        chan *Client
	HandleMessage     chan *ClientMessage
	maxConnPerSession int
	writeWait         time.Duration
	pongWait          time.Duration
	pingPeriod        time.Duration
	messageHandler    MessageHandler
	logger            zerolog.Logger
	done              chan struct{}
	stopOnce          sync.Once
}

type MessageHandler interface {
	HandleWebSocketMessage(client *Client, msg *Message) error
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		clients:           make(map[string]*Client),
		sessionIndex:      make(map[string]map[string]bool),
		Register:          make(chan *Client),
		Unregister:        make(chan *Client),
		HandleMessage:     make(chan *ClientMessage),
		maxConnPerSession: cfg.MaxConnPerSession,
		writeWait:         cfg.WriteWait,
		pongWait:          cfg.PongWait,
		pingPeriod:        cfg.PingPeriod,
		logger:            cfg.Logger.With().Str("component", "websocket").Logger(),
		done:              make(chan struct{}),
	}
}

func (m *Manager) SetMessageHandler(handler MessageHandler) {
	m.messageHandler = handler
}

// Run serves the register, unregister and message channels until ctx is
// done, then closes every client.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.stopOnce.Do(func() { close(m.done) })
			m.closeAll()
			return

		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)
		}
	}
}

// Done is closed once Run has stopped.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.sessionIndex[client.SessionID] == nil {
		m.sessionIndex[client.SessionID] = make(map[string]bool)
	}

	if len(m.sessionIndex[client.SessionID]) >= m.maxConnPerSession {
		m.logger.Warn().Str("session", client.SessionID).Msg("max connections reached for session")
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.sessionIndex[client.SessionID][client.ID] = true

	m.logger.Debug().Str("client", client.ID).Str("session", client.SessionID).Msg("client registered")
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.sessionIndex[client.SessionID], client.ID)

		if len(m.sessionIndex[client.SessionID]) == 0 {
			delete(m.sessionIndex, client.SessionID)
		}

		close(client.Send)
		m.logger.Debug().Str("client", client.ID).Msg("client unregistered")
	}
}

func (m *Manager) closeAll() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for id, client := range m.clients {
		close(client.Send)
		delete(m.clients, id)
	}
	m.sessionIndex = make(map[string]map[string]bool)
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	if m.messageHandler == nil {
		return
	}
	msg := clientMsg.Message
	if err := m.messageHandler.HandleWebSocketMessage(clientMsg.Client, msg); err != nil {
		m.logger.Warn().Err(err).Str("type", string(msg.Type)).Msg("error handling message")
	}
}

// BroadcastExcept sends message to every client not belonging to
// excludeSessionID. Clients whose buffer is full are dropped.
func (m *Manager) BroadcastExcept(excludeSessionID string, message *Message) error {
	data, err := message.Encode()
	if err != nil {
		return err
	}

	var slow []*Client

	m.clientsMutex.RLock()
	for _, client := range m.clients {
		if client.SessionID == excludeSessionID {
			continue
		}
		if !client.enqueue(data) {
			slow = append(slow, client)
		}
	}
	m.clientsMutex.RUnlock()

	for _, client := range slow {
		m.logger.Warn().Str("client", client.ID).Msg("send buffer full, closing connection")
		m.unregisterClient(client)
	}

	return nil
}

func (m *Manager) SendToClient(clientID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil
	}

	data, err := message.Encode()
	if err != nil {
		return err
	}
	if !client.enqueue(data) {
		m.logger.Warn().Str("client", clientID).Msg("send buffer full")
	}
	return nil
}

func (m *Manager) GetSessionConnections(sessionID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if clients, exists := m.sessionIndex[sessionID]; exists {
		return len(clients)
	}
	return 0
}

// StoreListener returns a store event listener for the workspace of
// sessionID: every successful write is announced to the other sessions.
func (m *Manager) StoreListener(sessionID string) func(store.Event) {
	return func(ev store.Event) {
		if ev.Phase != store.PhaseFulfilled || !ev.Action.IsWrite() {
			return
		}

		msg, err := NewCollectionChanged(ev)
		if err != nil {
			m.logger.Warn().Err(err).Msg("failed to build change notification")
			return
		}
		if err := m.BroadcastExcept(sessionID, msg); err != nil {
			m.logger.Warn().Err(err).Msg("failed to broadcast change notification")
		}
	}
}
