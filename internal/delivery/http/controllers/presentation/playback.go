package presentation

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"LiqLearns/internal/service/presentation/playback"
	"LiqLearns/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxCommandSize = 64 << 10
	outboundBuffer = 16
	startTimeout   = 10 * time.Second
)

// Server message types.
const (
	MessageSnapshot = "snapshot"
	MessageTick     = "tick"
	MessageComplete = "complete"
	MessageReward   = "reward"
	MessageError    = "error"
)

type PlaybackService interface {
	Start(ctx context.Context, userID, presentationID uuid.UUID, cb playback.Callbacks) (*playback.Session, error)
	End(id uuid.UUID) error
}

type ServerMessage struct {
	Type       string             `json:"type"`
	SessionID  uuid.UUID          `json:"session_id,omitempty"`
	Snapshot   *playback.Snapshot `json:"snapshot,omitempty"`
	ResourceID string             `json:"resource_id,omitempty"`
	Action     string             `json:"action,omitempty"`
	Error      string             `json:"error,omitempty"`
	Code       int                `json:"code,omitempty"`
}

type PlaybackHandler struct {
	log      logger.Log
	service  PlaybackService
	upgrader websocket.Upgrader
}

func NewPlaybackHandler(l logger.Log, s PlaybackService, allowedOrigins []string) *PlaybackHandler {
	return &PlaybackHandler{
		log:     l,
		service: s,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// checkOrigin accepts same-origin requests, clients that send no Origin and
// the configured front-end origins.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// playbackClient queues outbound messages for a single writer goroutine.
type playbackClient struct {
	outbound chan ServerMessage
	done     chan struct{}
	log      logger.Log
}

func (pc *playbackClient) send(msg ServerMessage) {
	select {
	case <-pc.done:
	case pc.outbound <- msg:
	default:
		pc.log.Warn("dropping playback message; outbound buffer full", "type", msg.Type)
	}
}

func (pc *playbackClient) callbacks() playback.Callbacks {
	return playback.Callbacks{
		OnComplete: func(s playback.Snapshot) {
			pc.send(ServerMessage{Type: MessageComplete, Snapshot: &s})
		},
		OnReward: func(id string) {
			pc.send(ServerMessage{Type: MessageReward, ResourceID: id})
		},
		OnTick: func(s playback.Snapshot) {
			pc.send(ServerMessage{Type: MessageTick, Snapshot: &s})
		},
	}
}

// Play opens a playback session and drives it with JSON commands over a
// WebSocket. Every command is answered with a snapshot or an error message.
func (h *PlaybackHandler) Play(c *gin.Context) {
	id, ok := presentationID(c)
	if !ok {
		return
	}
	userID, ok := clientID(c)
	if !ok {
		return
	}

	client := &playbackClient{
		outbound: make(chan ServerMessage, outboundBuffer),
		done:     make(chan struct{}),
		log:      h.log.With("presentation_id", id, "user_id", userID),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), startTimeout)
	session, err := h.service.Start(ctx, userID, id, client.callbacks())
	cancel()
	if err != nil {
		writeError(c, h.log, "Play", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		client.log.ErrorErr("websocket upgrade failed", err)
		close(client.done)
		if err := h.service.End(session.ID); err != nil {
			client.log.ErrorErr("failed to end playback session", err)
		}
		return
	}
	client.log = client.log.With("session_id", session.ID)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(conn, client)
	}()

	snap := session.Engine.Snapshot()
	client.send(ServerMessage{Type: MessageSnapshot, SessionID: session.ID, Snapshot: &snap})

	h.readPump(conn, session, client)

	close(client.done)
	if err := h.service.End(session.ID); err != nil {
		client.log.ErrorErr("failed to end playback session", err)
	}
	<-writerDone
	_ = conn.Close()
}

func (h *PlaybackHandler) readPump(conn *websocket.Conn, session *playback.Session, client *playbackClient) {
	conn.SetReadLimit(maxCommandSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd playback.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				client.log.ErrorErr("playback connection dropped", err)
			}
			return
		}

		snap, err := session.Engine.Dispatch(cmd)
		if err != nil {
			client.send(ServerMessage{
				Type:     MessageError,
				Action:   cmd.Action,
				Error:    err.Error(),
				Code:     StatusFor(err),
				Snapshot: &snap,
			})
			continue
		}
		client.send(ServerMessage{Type: MessageSnapshot, Action: cmd.Action, Snapshot: &snap})
	}
}

func (h *PlaybackHandler) writePump(conn *websocket.Conn, client *playbackClient) {
	heartbeat := time.NewTicker(pingPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-client.done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-client.outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				client.log.ErrorErr("failed to write playback message", err)
				// Unblock the reader so the session ends.
				_ = conn.Close()
				return
			}
		case <-heartbeat.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
