// Package chat реализует чат поддержки поверх websocket. Сессии живут только
// в памяти, история сообщений не сохраняется.
package chat

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrAgentAttached   = errors.New("agent already attached to session")
)

// Session пара соединений: юзер и (опционально) оператор поддержки.
type Session struct {
	ID        string
	UserConn  *websocket.Conn
	AgentConn *websocket.Conn
}

// SessionManager потокобезопасный реестр активных сессий чата.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// Insert регистрирует новую сессию для соединения юзера и возвращает ее.
func (m *SessionManager) Insert(userConn *websocket.Conn) *Session {
	session := &Session{
		ID:       uuid.NewString(),
		UserConn: userConn,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session
}

func (m *SessionManager) Lookup(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	return session, ok
}

// AttachAgent подключает оператора к сессии. Вторая попытка дает ErrAgentAttached.
func (m *SessionManager) AttachAgent(id string, agentConn *websocket.Conn) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.AgentConn != nil {
		return nil, ErrAgentAttached
	}
	session.AgentConn = agentConn
	return session, nil
}

// Peer возвращает соединение второго участника сессии под блокировкой:
// оператор может подключиться конкурентно с пересылкой сообщений юзера.
// Второй результат false означает, что сессии уже нет; nil-соединение при
// true - что второй участник еще не подключился.
func (m *SessionManager) Peer(id string, fromAgent bool) (*websocket.Conn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if fromAgent {
		return session.UserConn, true
	}
	return session.AgentConn, true
}

// Remove снимает сессию с учета и закрывает оба соединения. Повторный вызов
// безопасен.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	if session.UserConn != nil {
		_ = session.UserConn.Close()
	}
	if session.AgentConn != nil {
		_ = session.AgentConn.Close()
	}
}

// Len количество активных сессий.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
