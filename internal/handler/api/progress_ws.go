package api

import (
	"net/http"
	"sync"

	"DarkScan/internal/usecase"
	applogger "DarkScan/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// ProgressHub fans grid-search progress events out to websocket clients.
// Slow clients are dropped rather than allowed to stall the run.
type ProgressHub struct {
	logger   *applogger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan usecase.Progress
}

func NewProgressHub(logger *applogger.Logger) *ProgressHub {
	return &ProgressHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: map[*websocket.Conn]chan usecase.Progress{},
	}
}

// Run consumes progress events until the channel closes. Start it once.
func (h *ProgressHub) Run(events <-chan usecase.Progress) {
	for p := range events {
		h.broadcast(p)
	}
}

func (h *ProgressHub) broadcast(p usecase.Progress) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- p:
		default:
			// Client cannot keep up; cut it loose.
			close(ch)
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

func (h *ProgressHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/progress", h.Serve)
}

func (h *ProgressHub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", applogger.Error(err))
		return err
	}

	ch := make(chan usecase.Progress, 64)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	h.logger.Info("progress client connected", applogger.String("remote", conn.RemoteAddr().String()))

	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[conn]; ok {
			close(ch)
			delete(h.clients, conn)
		}
		h.mu.Unlock()
		_ = conn.Close()
	}()

	// Drain reads so close frames and pings are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for p := range ch {
		if err := conn.WriteJSON(p); err != nil {
			return nil
		}
	}
	return nil
}
