package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/alirezabazmara/InterviewApp/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is an audio-turn control frame. Answer audio itself travels as
// binary frames and is attributed to the index of the last begin message.
type Message struct {
	Type     string          `json:"type"`
	Index    int             `json:"index"`
	AudioURL string          `json:"audioUrl,omitempty"`
	Error    string          `json:"error,omitempty"`
	Analysis json.RawMessage `json:"analysis,omitempty"`
}

// Frame types exchanged with the client.
const (
	msgBegin         = "begin"          // client: start the turn for a question
	msgPlaybackEnded = "playback-ended" // client: question audio finished or failed
	msgStop          = "stop"           // client: end the answer capture
	msgPlay          = "play"           // server: play this audio URL now
	msgSkip          = "skip"           // server: no playback for this turn
	msgCaptureReady  = "capture-ready"  // server: start streaming answer chunks
	msgAnalysis      = "analysis"       // server: judgment for the captured answer
	msgError         = "error"          // server: turn-level failure
)

// AudioHandler runs the per-question turn protocol over a websocket
// connection: strict play-then-record alternation driven by the
// interview service's coordinator.
type AudioHandler struct {
	interview *services.InterviewService
	logger    *zap.Logger
}

func NewAudioHandler(interview *services.InterviewService, logger *zap.Logger) *AudioHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AudioHandler{interview: interview, logger: logger}
}

type turnConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (tc *turnConn) send(msg Message) error {
	tc.writeMu.Lock()
	defer tc.writeMu.Unlock()
	return tc.conn.WriteJSON(msg)
}

// Handle upgrades the connection and serves turn messages until the client
// disconnects. Disconnecting releases any in-flight capture.
func (h *AudioHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	tc := &turnConn{conn: conn}

	h.interview.SetCaptureNotifier(func(index int) {
		if sendErr := tc.send(Message{Type: msgCaptureReady, Index: index}); sendErr != nil {
			h.logger.Warn("capture-ready notify failed", zap.Error(sendErr))
		}
	})

	defer func() {
		h.interview.SetCaptureNotifier(nil)
		h.interview.CancelCapture()
		conn.Close()
	}()

	currentIndex := -1
	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if currentIndex < 0 {
				continue
			}
			if err := h.interview.PushChunk(currentIndex, payload); err != nil {
				h.logger.Debug("dropped audio chunk", zap.Int("index", currentIndex), zap.Error(err))
			}

		case websocket.TextMessage:
			var msg Message
			if err := json.Unmarshal(payload, &msg); err != nil {
				tc.send(Message{Type: msgError, Error: "invalid message"})
				continue
			}
			currentIndex = msg.Index
			h.handleControl(c.Request.Context(), tc, msg)
		}
	}
}

func (h *AudioHandler) handleControl(ctx context.Context, tc *turnConn, msg Message) {
	switch msg.Type {
	case msgBegin:
		audioURL, err := h.interview.BeginTurn(msg.Index)
		if err != nil {
			tc.send(Message{Type: msgError, Index: msg.Index, Error: err.Error()})
			return
		}
		if audioURL != "" {
			tc.send(Message{Type: msgPlay, Index: msg.Index, AudioURL: audioURL})
			return
		}
		tc.send(Message{Type: msgSkip, Index: msg.Index})

	case msgPlaybackEnded:
		h.interview.PlaybackEnded(msg.Index)

	case msgStop:
		result, err := h.interview.StopAndAnalyze(ctx, msg.Index)
		if err != nil {
			if errors.Is(err, services.ErrStaleSession) {
				return
			}
			tc.send(Message{Type: msgError, Index: msg.Index, Error: err.Error()})
			return
		}
		analysis, err := json.Marshal(result)
		if err != nil {
			tc.send(Message{Type: msgError, Index: msg.Index, Error: "failed to encode analysis"})
			return
		}
		tc.send(Message{Type: msgAnalysis, Index: msg.Index, Analysis: analysis})

	default:
		tc.send(Message{Type: msgError, Index: msg.Index, Error: "unknown message type"})
	}
}
