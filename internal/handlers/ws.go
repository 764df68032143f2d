package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"moviehouse/internal/core/view"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type socketMessage struct {
	Type  string     `json:"type"`
	State *view.View `json:"state,omitempty"`
	Error string     `json:"error,omitempty"`
}

// SessionSocket streams view updates to the browser and feeds its input
// events to the session's controller. Only the write loop writes to conn.
func (h *APIHandler) SessionSocket(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Websocket upgrade failed:", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.Controller.Subscribe()
	defer unsubscribe()

	rejected := make(chan string, 8)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		conn.SetReadLimit(maxMessage)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			s.Touch()
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			var ev view.Event
			if err := conn.ReadJSON(&ev); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Error("Websocket read failed for session", s.ID, ":", err)
				}
				return
			}
			s.Touch()
			if err := s.Controller.Apply(ev); err != nil {
				select {
				case rejected <- err.Error():
				default:
				}
			}
		}
	}()

	write := func(msg socketMessage) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	current := s.Controller.Snapshot()
	if err := write(socketMessage{Type: "state", State: &current}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readerDone:
			return
		case v, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := write(socketMessage{Type: "state", State: &v}); err != nil {
				h.logger.Debug("Websocket write failed for session", s.ID, ":", err)
				return
			}
		case msg := <-rejected:
			if err := write(socketMessage{Type: "error", Error: msg}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
