package transport

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aura-translate/backend/internal/asrsession"
	"github.com/aura-translate/backend/internal/pipeline"
	"github.com/aura-translate/backend/internal/translate"
	"github.com/aura-translate/backend/internal/tts"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	sendBufferSize = 256
	maxFrameBytes  = 65536
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Deps bundles the process-global collaborators every connection's
// Pipeline is built from.
type Deps struct {
	Registry   *Registry
	Translator *translate.Translator
	Synth      tts.Synthesizer
	Pool       *pipeline.Pool
	ASRBackend asrsession.Backend
	Logger     *zap.Logger
}

// Client is one WebSocket connection: the adapter between the wire
// protocol and a Pipeline. It satisfies pipeline.PartnerConn so the other
// connection's pipeline can address it directly.
type Client struct {
	id          string
	meetingID   string
	attendeeID  string
	displayName string

	spokenLocale string

	conn *websocket.Conn
	send chan []byte

	deps Deps
	pipe *pipeline.Pipeline

	open atomic.Bool
}

// ServeWs upgrades the request to a WebSocket and runs the connection's
// read/write pumps until it disconnects.
func ServeWs(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			deps.Logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			id:   uuid.New().String(),
			conn: conn,
			send: make(chan []byte, sendBufferSize),
			deps: deps,
		}
		client.open.Store(true)

		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		switch msgType {
		case websocket.BinaryMessage:
			if c.pipe != nil {
				c.pipe.OnAudioFrame(data)
			}
		case websocket.TextMessage:
			c.handleControlFrame(data)
		}
	}
}

func (c *Client) handleControlFrame(data []byte) {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.sendError("malformed control frame")
		return
	}

	switch frame.Action {
	case "join":
		c.handleJoin(frame)
	case "mic_on":
		if c.pipe != nil {
			c.pipe.OnMicOn()
		}
	case "mic_off":
		if c.pipe != nil {
			c.pipe.OnMicOff()
		}
	case "stop":
		if c.pipe != nil {
			c.pipe.OnStop()
		}
	default:
		c.sendError("unknown action: " + frame.Action)
	}
}

func (c *Client) handleJoin(frame clientFrame) {
	if c.pipe != nil {
		c.sendError("already joined")
		return
	}
	if frame.MeetingID == "" || frame.AttendeeID == "" {
		c.sendError("join requires meetingId and attendeeId")
		return
	}

	c.meetingID = frame.MeetingID
	c.attendeeID = frame.AttendeeID
	c.displayName = frame.AttendeeName
	c.spokenLocale = frame.SpokenLanguage

	if err := c.deps.Registry.Add(c); err != nil {
		c.sendError(err.Error())
		c.closeConn()
		return
	}

	info := pipeline.ParticipantInfo{
		ConnID:                c.id,
		AttendeeID:            c.attendeeID,
		DisplayName:           c.displayName,
		SpokenLocale:          frame.SpokenLanguage,
		DeclaredTargetLocale:  frame.TargetLanguage,
	}
	c.pipe = pipeline.New(c.meetingID, info, c.deps.Registry, c.deps.Translator, c.deps.Synth, c.deps.Pool, c.deps.ASRBackend, c.deps.Logger)
	c.pipe.OnJoin()

	c.writeFrame(serverFrame{Type: "joined", ConnectionID: c.id})
}

func (c *Client) sendError(message string) {
	c.writeFrame(serverFrame{Type: "error", Message: message})
}

func (c *Client) writeFrame(f serverFrame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		// Outbound buffer full: drop rather than block the writer, same
		// policy as audio frame ingestion.
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) teardown() {
	c.open.Store(false)
	if c.pipe != nil {
		c.pipe.Close()
	}
	if c.meetingID != "" {
		c.deps.Registry.Remove(c)
	}
	_ = c.conn.Close()
}

func (c *Client) closeConn() {
	_ = c.conn.Close()
}

// SendCaption implements pipeline.PartnerConn.
func (c *Client) SendCaption(e pipeline.CaptionEvent) {
	c.writeFrame(serverFrame{
		Type:              "caption",
		SpeakerAttendeeID: e.SpeakerAttendeeID,
		SpeakerName:       e.SpeakerName,
		OriginalText:      e.OriginalText,
		TranslatedText:    e.TranslatedText,
		IsFinal:           e.IsFinal,
		DetectedLanguage:  e.SourceLang,
		TargetLanguage:    e.TargetLang,
		StartTimeMs:       e.StartMs,
		EndTimeMs:         e.EndMs,
	})
}

// SendAudio implements pipeline.PartnerConn.
func (c *Client) SendAudio(e pipeline.AudioEvent) {
	c.writeFrame(serverFrame{
		Type:              "audio",
		SpeakerAttendeeID: e.SpeakerAttendeeID,
		AudioData:         base64.StdEncoding.EncodeToString(e.AudioData),
		TargetLanguage:    e.TargetLang,
	})
}

// IsOpen implements pipeline.PartnerConn.
func (c *Client) IsOpen() bool { return c.open.Load() }

// Locale implements pipeline.PartnerConn: the locale this connection's
// speaker talks in, which is what a partner should translate into.
func (c *Client) Locale() string { return c.spokenLocale }
