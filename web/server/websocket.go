package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-collision-demos/pkg/log"
	"github.com/df07/go-collision-demos/pkg/sim"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

var (
	errSessionDone  = errors.New("session complete")
	errClientClosed = errors.New("client closed")
)

// Message types exchanged over the interactive session
const (
	MessageKey      = "key"
	MessageCommand  = "command"
	MessageFrame    = "frame"
	MessageError    = "error"
	MessageComplete = "complete"
)

// ClientMessage is a key press or a named command from the browser
type ClientMessage struct {
	Type    string `json:"type"`
	Key     string `json:"key,omitempty"`
	Command string `json:"command,omitempty"`
}

// ServerMessage carries a frame, an error, or the end of the session
type ServerMessage struct {
	Type  string        `json:"type"`
	Frame *sim.Snapshot `json:"frame,omitempty"`
	Error string        `json:"error,omitempty"`
}

// session serializes writes; gorilla connections allow one concurrent writer
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) write(msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// handleWebSocket runs an interactive demo: frames stream out while key and
// command messages stream in and are applied between ticks
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseDemoRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	// Interactive sessions run to the server limit unless asked otherwise
	if r.URL.Query().Get("ticks") == "" {
		req.Ticks = s.maxTicks()
	}

	demo, err := sim.New(req.Demo, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	defer conn.Close()

	logger := s.log.With(
		log.String("stream", "websocket"),
		log.String("demo", demo.Name()),
		log.String("remote", conn.RemoteAddr().String()))
	logger.Info("Session started")

	sess := &session{conn: conn}
	runner := sim.NewRunner(demo, sim.RunnerOptions{
		MaxTicks: req.Ticks,
		Paused:   req.Paused,
		Logger:   logger,
	})

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		err := runner.Run(ctx, func(snap sim.Snapshot) error {
			return sess.write(ServerMessage{Type: MessageFrame, Frame: &snap})
		})
		if err != nil {
			return err
		}
		_ = sess.write(ServerMessage{Type: MessageComplete})
		sess.close()
		return errSessionDone
	})
	g.Go(func() error {
		return s.readCommands(ctx, sess, runner)
	})
	g.Go(func() error {
		// Unblocks the reader once either side is finished
		<-ctx.Done()
		return conn.Close()
	})

	err = g.Wait()
	switch {
	case err == nil, errors.Is(err, errSessionDone), errors.Is(err, errClientClosed), errors.Is(err, context.Canceled):
		logger.Info("Session ended")
	default:
		logger.Warn("Session failed", log.Error(err))
	}
}

// readCommands forwards client messages to the runner until the connection closes
func (s *Server) readCommands(ctx context.Context, sess *session, runner *sim.Runner) error {
	for {
		var msg ClientMessage
		if err := sess.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errClientClosed
			}
			return fmt.Errorf("read: %w", err)
		}

		var err error
		switch msg.Type {
		case MessageKey:
			err = runner.SendKey(msg.Key)
		case MessageCommand:
			err = runner.Send(sim.Command(msg.Command))
		default:
			err = fmt.Errorf("unknown message type %q", msg.Type)
		}
		if err != nil {
			if werr := sess.write(ServerMessage{Type: MessageError, Error: err.Error()}); werr != nil {
				return werr
			}
		}
	}
}
