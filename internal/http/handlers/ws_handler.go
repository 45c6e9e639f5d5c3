package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ads-marketplace/tactics/internal/auth"
	"github.com/ads-marketplace/tactics/internal/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WSHub fans tactic events out to the websocket connections of the
// customer that owns the tactic.
type WSHub struct {
	jwtSecret   string
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[int64][]*websocket.Conn
}

func NewWSHub(jwtSecret string, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		jwtSecret:   jwtSecret,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[int64][]*websocket.Conn),
	}
}

func (h *WSHub) Start(ctx context.Context) error {
	return h.subscriber.Subscribe(ctx, events.StreamTactics, h.route)
}

func (h *WSHub) route(event events.Event) {
	if event.CustomerID == 0 {
		return
	}
	h.SendToCustomer(event.CustomerID, event)
}

func (h *WSHub) SendToCustomer(customerID int64, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[customerID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("ws write failed", zap.Int64("customer_id", customerID), zap.Error(err))
		}
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	claims, err := auth.ParseJWT(h.jwtSecret, tokenStr)
	if err != nil || claims.CustomerID <= 0 {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	customerID := claims.CustomerID

	h.mu.Lock()
	h.connections[customerID] = append(h.connections[customerID], conn)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		conns := h.connections[customerID]
		for i, c := range conns {
			if c == conn {
				h.connections[customerID] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
		if len(h.connections[customerID]) == 0 {
			delete(h.connections, customerID)
		}
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop keeps the connection alive until the client leaves.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
