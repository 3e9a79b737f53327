package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sneakerfit-backend/internal/middleware"
	"sneakerfit-backend/internal/models"
	"sneakerfit-backend/internal/services"
)

const (
	writeWait       = 10 * time.Second
	maxMessageBytes = 16 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type chatStreamer interface {
	SendStream(ctx context.Context, sessionID, message string, onChunk func(string) error) (*models.ChatResponse, error)
}

// client serializes writes; gorilla connections allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) writeJSON(msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.write(data)
}

// Hub tracks chat stream sockets per session. With a Redis client, session
// events fan out through pub/sub so every replica reaches its own sockets.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*client
	redisClient *redis.Client
	cancelFuncs map[string]context.CancelFunc
	chat        chatStreamer
	log         *zap.SugaredLogger
}

func NewHub(redisClient *redis.Client, chat chatStreamer, log *zap.SugaredLogger) *Hub {
	return &Hub{
		connections: make(map[string][]*client),
		redisClient: redisClient,
		cancelFuncs: make(map[string]context.CancelFunc),
		chat:        chat,
		log:         log,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// The upgrade response is written by gorilla, so the refreshed session
	// cookie has to be handed over explicitly.
	header := http.Header{}
	for _, c := range w.Header().Values("Set-Cookie") {
		header.Add("Set-Cookie", c)
	}

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		h.log.Warnw("WebSocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	c := &client{conn: conn}
	h.registerConnection(sessionID, c)
	defer h.unregisterConnection(sessionID, c)

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugw("WebSocket closed unexpectedly", "session_id", sessionID, "error", err)
			}
			return
		}

		var in models.WSInbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.writeJSON(models.WSMessage{Type: models.WSTypeError, Message: "Invalid message format"})
			continue
		}

		h.handleMessage(ctx, sessionID, c, in.Message)
	}
}

func (h *Hub) handleMessage(ctx context.Context, sessionID string, c *client, message string) {
	resp, err := h.chat.SendStream(ctx, sessionID, message, func(chunk string) error {
		return c.writeJSON(models.WSMessage{Type: models.WSTypeChunk, Text: chunk})
	})
	if err != nil {
		c.writeJSON(models.WSMessage{Type: models.WSTypeError, Message: clientMessage(err)})
		if !isClientError(err) {
			h.log.Errorw("Chat stream failed", "session_id", sessionID, "error", err)
		}
		return
	}

	c.writeJSON(models.WSMessage{
		Type:           models.WSTypeDone,
		Response:       resp.Response,
		ConversationID: resp.ConversationID,
	})
}

func isClientError(err error) bool {
	var verr *services.ValidationError
	var uerr *services.ServiceUnavailableError
	return errors.As(err, &verr) || errors.As(err, &uerr)
}

func clientMessage(err error) string {
	if isClientError(err) {
		return err.Error()
	}
	return "An unexpected error occurred"
}

func (h *Hub) registerConnection(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionID] = append(h.connections[sessionID], c)

	// Start pub/sub subscription if this is the first connection for this session
	if len(h.connections[sessionID]) == 1 && h.redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[sessionID] = cancel
		go h.subscribeToPubSub(ctx, sessionID)
	}

	h.log.Debugw("WebSocket connected", "session_id", sessionID, "total", len(h.connections[sessionID]))
}

func (h *Hub) unregisterConnection(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	conns := h.connections[sessionID]
	for i, existing := range conns {
		if existing == c {
			h.connections[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
		if cancel, ok := h.cancelFuncs[sessionID]; ok {
			cancel()
			delete(h.cancelFuncs, sessionID)
		}
	}

	h.log.Debugw("WebSocket disconnected", "session_id", sessionID)
}

func sessionChannel(sessionID string) string {
	return "session_updates:" + sessionID
}

func (h *Hub) subscribeToPubSub(ctx context.Context, sessionID string) {
	pubsub := h.redisClient.Subscribe(ctx, sessionChannel(sessionID))
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
			h.broadcast(sessionID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(sessionID string, data []byte) {
	// Writes can block up to writeWait, so they run outside the registry lock.
	h.mu.RLock()
	clients := append([]*client(nil), h.connections[sessionID]...)
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.log.Debugw("WebSocket write failed", "session_id", sessionID, "error", err)
		}
	}
}

// SendToSession delivers msg to every socket bound to the session.
func (h *Hub) SendToSession(sessionID string, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	if h.redisClient == nil {
		h.broadcast(sessionID, data)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.redisClient.Publish(ctx, sessionChannel(sessionID), string(data)).Err(); err != nil {
		h.log.Warnw("Failed to publish session update", "session_id", sessionID, "error", err)
	}
}
