package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512
)

type liveMessageType string

const (
	liveBookings liveMessageType = "bookings"
	liveError    liveMessageType = "error"
)

type liveMessage struct {
	Type      liveMessageType      `json:"type"`
	Bookings  []domain.Booking     `json:"bookings"`
	Stats     *domain.BookingStats `json:"stats,omitempty"`
	Message   string               `json:"message,omitempty"`
	Timestamp int64                `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// the admin token authenticates the socket; origins are not restricted.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// offerLatest replaces any undelivered list in ch with list. Slow sockets
// skip intermediate states rather than stall the store's writers.
func offerLatest(ch chan []domain.Booking, list []domain.Booking) {
	for {
		select {
		case ch <- list:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// sessionLive reports whether the socket's admin session still exists. A
// failed lookup counts as expired.
func (h *AdminHandler) sessionLive(ctx context.Context, token string) bool {
	ok, err := h.admin.Authorized(ctx, token)
	if err != nil {
		h.logger.Warn("failed to re-check admin session on live feed", zap.Error(err))
		return false
	}
	return ok
}

func closeExpired(conn *websocket.Conn) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteJSON(liveMessage{Type: liveError, Message: "admin session expired", Timestamp: time.Now().UnixMilli()})
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "admin session expired"),
		time.Now().Add(writeWait))
}

// Live streams the filtered booking list plus stats on every store change,
// starting with the current state. The admin session is checked again before
// every frame and on every ping, and the socket closes once it is gone.
func (h *AdminHandler) Live(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	token := c.GetString(adminTokenKey)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan []domain.Booking, 1)
	unsubscribe, err := h.bookings.Subscribe(ctx, func(list []domain.Booking) {
		offerLatest(updates, list)
	})
	if err != nil {
		h.logger.Error("failed to subscribe to bookings", zap.Error(err))
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteJSON(liveMessage{Type: liveError, Message: "live updates unavailable", Timestamp: time.Now().UnixMilli()})
		return
	}
	defer unsubscribe()

	h.logger.Debug("admin live feed opened", zap.String("remote", c.ClientIP()))

	go func() {
		defer cancel()
		conn.SetReadLimit(maxInboundSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("admin live feed closed", zap.String("remote", c.ClientIP()))
			return
		case list := <-updates:
			if !h.sessionLive(ctx, token) {
				closeExpired(conn)
				h.logger.Debug("admin live feed closed, session expired", zap.String("remote", c.ClientIP()))
				return
			}
			stats := domain.Aggregate(list)
			msg := liveMessage{
				Type:      liveBookings,
				Bookings:  services.FilterBookings(list, filter),
				Stats:     &stats,
				Timestamp: time.Now().UnixMilli(),
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if !h.sessionLive(ctx, token) {
				closeExpired(conn)
				h.logger.Debug("admin live feed closed, session expired", zap.String("remote", c.ClientIP()))
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
