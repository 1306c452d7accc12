package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"renthub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 30 * time.Second

// EventsHandler handles the server-sent events stream
type EventsHandler struct {
	hub *services.SSEHub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *services.SSEHub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream opens a server-sent events connection scoped to the caller's
// notification channel. Delivery is best-effort; the notification list is
// the durable record.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	client := &services.SSEClient{
		ID:      uuid.NewString(),
		Channel: fmt.Sprintf("user:%d", userID),
		Events:  make(chan services.SSEEvent, 16),
	}
	h.hub.Register(client)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unregister(client.ID)

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-client.Events:
				if !ok {
					return
				}
				data, err := json.Marshal(event.Data)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
				if err := w.Flush(); err != nil {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
