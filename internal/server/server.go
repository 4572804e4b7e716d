// Package server binds the control listener and both media sockets and
// supervises every loop running on them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/dkeye/lanhub/internal/adapters/control"
	"github.com/dkeye/lanhub/internal/app/sfu"
	"github.com/dkeye/lanhub/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

type Options struct {
	Host          string
	ControlPort   int
	VideoPort     int
	AudioPort     int
	UDPBufferSize int
}

type Server struct {
	opts    Options
	control *control.Controller
	targets sfu.TargetSource
	relays  *sfu.RelayManager

	ln    net.Listener
	video *net.UDPConn
	audio *net.UDPConn

	closeOnce sync.Once
	wg        conc.WaitGroup
}

func New(opts Options, ctl *control.Controller, targets sfu.TargetSource) *Server {
	return &Server{
		opts:    opts,
		control: ctl,
		targets: targets,
		relays:  sfu.NewRelayManager(),
	}
}

// Listen binds the TCP control port and both UDP media ports.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.ControlPort)))
	if err != nil {
		return fmt.Errorf("listen control: %w", err)
	}
	video, err := listenUDP(s.opts.Host, s.opts.VideoPort)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("listen video: %w", err)
	}
	audio, err := listenUDP(s.opts.Host, s.opts.AudioPort)
	if err != nil {
		_ = ln.Close()
		_ = video.Close()
		return fmt.Errorf("listen audio: %w", err)
	}
	s.ln, s.video, s.audio = ln, video, audio

	s.relays.Add(sfu.NewRelay(domain.MediaVideo, video, s.targets, s.opts.UDPBufferSize))
	s.relays.Add(sfu.NewRelay(domain.MediaAudio, audio, s.targets, s.opts.UDPBufferSize))

	log.Info().Str("module", "server").
		Str("control", ln.Addr().String()).
		Str("video", video.LocalAddr().String()).
		Str("audio", audio.LocalAddr().String()).
		Msg("listening")
	return nil
}

func listenUDP(host string, port int) (*net.UDPConn, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	return net.ListenUDP("udp", addr)
}

func (s *Server) ControlAddr() net.Addr { return s.ln.Addr() }
func (s *Server) VideoAddr() net.Addr   { return s.video.LocalAddr() }
func (s *Server) AudioAddr() net.Addr   { return s.audio.LocalAddr() }

func (s *Server) Relays() *sfu.RelayManager { return s.relays }

// Run serves until ctx is done, then closes all sockets and waits for every
// connection handler and relay loop to return. Listen must be called first.
func (s *Server) Run(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("server: Run called before Listen")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.wg.Go(func() {
		if err := s.relays.Run(ctx); err != nil {
			log.Error().Str("module", "server").Err(err).Msg("relay stopped")
		}
	})
	stop := context.AfterFunc(ctx, s.closeSockets)
	defer stop()

	err := s.acceptLoop(ctx)
	cancel()
	s.closeSockets()

	if r := s.wg.WaitAndRecover(); r != nil {
		log.Error().Str("module", "server").Str("panic", r.String()).Msg("goroutine panicked")
	}
	log.Info().Str("module", "server").Msg("server stopped")
	return err
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		log.Info().Str("module", "server").Str("remote", nc.RemoteAddr().String()).Msg("accepted control connection")
		s.wg.Go(func() {
			var pc panics.Catcher
			pc.Try(func() { s.control.Serve(ctx, nc) })
			if r := pc.Recovered(); r != nil {
				log.Error().Str("module", "server").Str("panic", r.String()).Msg("control handler panicked")
				_ = nc.Close()
			}
		})
	}
}

func (s *Server) closeSockets() {
	s.closeOnce.Do(func() {
		_ = s.ln.Close()
		_ = s.video.Close()
		_ = s.audio.Close()
	})
}
