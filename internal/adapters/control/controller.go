package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dkeye/lanhub/internal/app/orch"
	"github.com/dkeye/lanhub/internal/core"
	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

var ErrNotRegistered = errors.New("first frame is not a valid register")

// Controller runs the control protocol for accepted TCP connections.
type Controller struct {
	Orch *orch.Orchestrator

	MaxFrameSize uint32
	SendQueue    int
	WriteTimeout time.Duration
	// ChatLimiter throttles chat and private_chat per identity; nil disables it.
	ChatLimiter *RateLimiter
}

func NewController(o *orch.Orchestrator) *Controller {
	return &Controller{
		Orch:         o,
		SendQueue:    256,
		WriteTimeout: 5 * time.Second,
	}
}

// Serve owns nc until the client disconnects or ctx is done. It returns
// after every goroutine it started has exited.
func (ctl *Controller) Serve(ctx context.Context, nc net.Conn) {
	conn := NewTCPConn(nc, ctl.SendQueue, ctl.WriteTimeout)
	var wg conc.WaitGroup
	wg.Go(conn.writePump)
	defer wg.Wait()

	stop := context.AfterFunc(ctx, conn.Close)
	defer stop()

	logger := log.With().Str("module", "control").Str("remote", conn.RemoteAddr().String()).Logger()
	reader := protocol.NewReader(nc, ctl.MaxFrameSize)

	sess, err := ctl.register(conn, reader)
	if err != nil {
		logger.Info().Err(err).Msg("registration failed")
		conn.Shutdown()
		return
	}
	defer func() {
		ctl.Orch.Leave(sess)
		conn.Close()
		if ctl.ChatLimiter != nil {
			ctl.ChatLimiter.Forget(sess.Identity)
		}
	}()

	ctl.readPump(sess, reader)
}

func (ctl *Controller) register(conn *TCPConn, reader *protocol.Reader) (*core.Session, error) {
	payload, err := reader.ReadFrame()
	if err != nil {
		return nil, err
	}
	typ, err := protocol.PeekType(payload)
	if err != nil || typ != protocol.TypeRegister {
		ctl.Orch.SendConn(conn, protocol.NewSystem(protocol.LevelError, "Expected register message"))
		return nil, fmt.Errorf("%w: got %q", ErrNotRegistered, typ)
	}
	var req protocol.Register
	if err := protocol.Decode(payload, &req); err != nil {
		ctl.Orch.SendConn(conn, protocol.NewSystem(protocol.LevelError, "Username is required"))
		return nil, fmt.Errorf("%w: %w", ErrNotRegistered, err)
	}
	id, err := domain.NewIdentity(req.Username)
	if err != nil {
		ctl.Orch.SendConn(conn, protocol.NewSystem(protocol.LevelError, "Invalid username: %v", err))
		return nil, fmt.Errorf("%w: %w", ErrNotRegistered, err)
	}

	sess := &core.Session{
		ID:       core.NewSessionID(),
		Identity: id,
		Conn:     conn,
		JoinedAt: time.Now(),
	}
	if err := ctl.Orch.Join(sess); err != nil {
		return nil, err
	}
	return sess, nil
}
