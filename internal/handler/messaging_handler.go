package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/HankLeo/21-points/internal/messaging"
	"github.com/HankLeo/21-points/internal/middleware"
)

type PublishResult struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

// MessagingHandler publishes to the application topic and streams it to
// WebSocket clients.
type MessagingHandler struct {
	broker   messaging.Broker
	hub      *messaging.Hub
	topic    string
	upgrader websocket.Upgrader
}

func NewMessagingHandler(broker messaging.Broker, hub *messaging.Hub, topic string, allowedOrigins []string) *MessagingHandler {
	return &MessagingHandler{
		broker: broker,
		hub:    hub,
		topic:  topic,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func (h *MessagingHandler) Publish(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if err := h.broker.Publish(r.Context(), message); err != nil {
		log.Printf("[messaging] publish failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to publish message")
		return
	}
	writeJSON(w, http.StatusOK, PublishResult{Topic: h.topic, Message: message})
}

// Register upgrades to a WebSocket that receives every topic message
// until it is closed or unregistered.
func (h *MessagingHandler) Register(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.hub.Serve(h.hub.Register(p.Login, conn))
}

func (h *MessagingHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	n := h.hub.UnregisterLogin(p.Login)
	writeJSON(w, http.StatusOK, map[string]int{"closed": n})
}
