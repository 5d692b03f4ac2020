package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"comerciopos/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type EventosHandler struct{ bus *events.Bus }

func NewEventosHandler(bus *events.Bus) *EventosHandler { return &EventosHandler{bus: bus} }

// Stream godoc
// @Summary      Stream de eventos (SSE)
// @Description  Server-Sent Events con cambios de stock y ventas registradas. La suscripción se cancela al cerrar la conexión.
// @Tags         eventos
// @Produce      text/event-stream
// @Security     BearerAuth
// @Router       /v1/eventos [get]
func (h *EventosHandler) Stream(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch, cancel := h.bus.Subscribe(16)
	defer cancel()

	// Initial comment keeps proxies from buffering the empty stream.
	fmt.Fprint(c.Writer, ": connected\n\n")
	flusher.Flush()

	// Heartbeat keeps idle connections alive through proxies.
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			flusher.Flush()
		case evento, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(evento)
			if err != nil {
				log.Warn().Err(err).Msg("sse: marshal failed")
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", evento.Tipo, data)
			flusher.Flush()
		}
	}
}
