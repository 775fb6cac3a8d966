package chat

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	messageTypeBot    = "bot"
	messageTypeUser   = "user"
	messageTypeAgent  = "agent"
	messageTypeSystem = "system"

	greetingText = "Merhaba! Size nasıl yardımcı olabiliriz? Bir temsilcimiz en kısa sürede sizinle ilgilenecek."
)

type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Text      string `json:"text"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// Handler принимает websocket-соединения чата поддержки.
type Handler struct {
	manager *SessionManager
	logger  *logrus.Logger
}

func NewHandler(manager *SessionManager, logger *logrus.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// Serve gin.HandlerFunc для роута чата. С параметром ?session= соединение
// подключается оператором к существующей сессии, без него открывается новая
// сессия юзера.
func (h *Handler) Serve(c *gin.Context) {
	conn, upgradeErr := upgrader.Upgrade(c.Writer, c.Request, nil)
	if upgradeErr != nil {
		h.logger.WithError(upgradeErr).Warn("websocket upgrade failed")
		return
	}

	if sessionID := c.Query("session"); sessionID != "" {
		h.serveAgent(conn, sessionID)
		return
	}
	h.serveUser(conn)
}

func (h *Handler) serveUser(conn *websocket.Conn) {
	session := h.manager.Insert(conn)
	defer h.manager.Remove(session.ID)

	// приветствие бота с id сессии, по нему подключается оператор
	if err := writeMessage(conn, Message{
		Type:      messageTypeBot,
		SessionID: session.ID,
		Text:      greetingText,
	}); err != nil {
		h.logger.WithError(err).Warn("chat greeting failed")
		return
	}

	h.relay(session.ID, conn, messageTypeUser)
}

func (h *Handler) serveAgent(conn *websocket.Conn, sessionID string) {
	session, attachErr := h.manager.AttachAgent(sessionID, conn)
	if attachErr != nil {
		_ = writeMessage(conn, Message{Type: messageTypeSystem, Text: attachErr.Error()})
		_ = conn.Close()
		return
	}
	defer h.manager.Remove(session.ID)

	if session.UserConn != nil {
		_ = writeMessage(session.UserConn, Message{
			Type: messageTypeSystem,
			Text: "Temsilci bağlandı.",
		})
	}

	h.relay(session.ID, conn, messageTypeAgent)
}

// relay читает текстовые сообщения соединения и пересылает их второму
// участнику сессии. Возврат из цикла означает разрыв соединения, сессия
// разбирается вызывающей стороной.
func (h *Handler) relay(sessionID string, conn *websocket.Conn, senderType string) {
	for {
		_, payload, readErr := conn.ReadMessage()
		if readErr != nil {
			return
		}

		var incoming Message
		if unmarshalErr := json.Unmarshal(payload, &incoming); unmarshalErr != nil {
			incoming = Message{Text: string(payload)}
		}

		peer, ok := h.manager.Peer(sessionID, senderType == messageTypeAgent)
		if !ok {
			return
		}
		if peer == nil {
			continue
		}

		if err := writeMessage(peer, Message{
			Type:      senderType,
			SessionID: sessionID,
			Text:      incoming.Text,
		}); err != nil {
			h.logger.WithError(err).WithField("sessionID", sessionID).Warn("chat relay failed")
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, msg Message) error {
	payload, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		return errors.Wrap(marshalErr, "marshaling chat message")
	}
	if writeErr := conn.WriteMessage(websocket.TextMessage, payload); writeErr != nil {
		return errors.Wrap(writeErr, "writing chat message")
	}
	return nil
}
