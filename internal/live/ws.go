package live

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"marsrover/internal/view"
)

const (
	EventSelectRover = "select_rover"
	EventCamera      = "camera"
	FrameRender      = "render"

	writeWait = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is a UI event sent by the browser.
type Event struct {
	Type   string `json:"type"`
	Rover  string `json:"rover,omitempty"`
	Camera string `json:"camera,omitempty"`
}

// Frame carries one complete render to the browser.
type Frame struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	HTML    string `json:"html"`
}

// Session is one websocket connection with its own controller.
type Session struct {
	ID     string
	conn   *websocket.Conn
	ctrl   *Controller
	logger *zap.Logger
}

func WSHandler(hub *Hub, fetcher Fetcher, logger *zap.Logger, opts ...Option) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Debug("ws_upgrade_failed", zap.Error(err))
			return
		}

		initial := view.DefaultState()
		initial.CameraType = view.NormalizeCamera(c.Query("camera-type"))

		id := uuid.NewString()
		s := &Session{
			ID:     id,
			conn:   ws,
			logger: logger.With(zap.String("session", id)),
		}
		s.ctrl = NewController(fetcher, initial, s.push, s.logger, opts...)

		hub.Add(s)
		s.logger.Info("session_opened", zap.String("camera", initial.CameraType))

		s.run()

		hub.Remove(s)
		_ = ws.Close()
		s.logger.Info("session_closed")
	}
}

func (s *Session) run() {
	s.ctrl.Start()
	defer s.ctrl.Close()

	for {
		var ev Event
		if err := s.conn.ReadJSON(&ev); err != nil {
			return
		}
		if err := s.handle(ev); err != nil {
			s.logger.Warn("event_rejected", zap.String("type", ev.Type), zap.Error(err))
		}
	}
}

func (s *Session) handle(ev Event) error {
	switch ev.Type {
	case EventSelectRover:
		return s.ctrl.SelectRover(ev.Rover)
	case EventCamera:
		return s.ctrl.SetCamera(ev.Camera)
	default:
		s.logger.Debug("event_ignored", zap.String("type", ev.Type))
		return nil
	}
}

// push is the controller's sink. The store calls it under its lock, which
// keeps this the connection's only writer.
func (s *Session) push(markup string) {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(Frame{Type: FrameRender, Session: s.ID, HTML: markup}); err != nil {
		s.logger.Debug("ws_write_failed", zap.Error(err))
	}
}
