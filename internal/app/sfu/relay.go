package sfu

//go:generate mockgen -source=relay.go -destination=mock_relay_test.go -package=sfu

import (
	"context"
	"errors"
	"net"
	"net/netip"

	"github.com/dkeye/lanhub/internal/core"
	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PacketConn is the subset of *net.UDPConn a Relay needs.
type PacketConn interface {
	ReadFromUDPAddrPort(b []byte) (int, netip.AddrPort, error)
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
	Close() error
}

// TargetSource yields the current endpoints registered for a media kind.
type TargetSource interface {
	MediaTargets(kind domain.MediaKind) []core.MediaTarget
}

// Relay rebroadcasts tagged datagrams of one media kind to every other
// registered endpoint of that kind. Datagrams are forwarded unmodified.
type Relay struct {
	Kind domain.MediaKind

	conn    PacketConn
	targets TargetSource
	bufSize int
	stats   counters
	logger  zerolog.Logger
}

func NewRelay(kind domain.MediaKind, conn PacketConn, targets TargetSource, bufSize int) *Relay {
	if bufSize <= 0 {
		bufSize = 65535
	}
	return &Relay{
		Kind:    kind,
		conn:    conn,
		targets: targets,
		bufSize: bufSize,
		logger:  log.With().Str("module", "sfu").Str("kind", kind.String()).Logger(),
	}
}

// Run reads datagrams until the socket is closed or ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = r.conn.Close() })
	defer stop()

	r.logger.Info().Msg("starting relay loop")
	// One spare byte detects datagrams the kernel truncated to fit.
	buf := make([]byte, r.bufSize+1)
	for {
		n, src, err := r.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				r.logger.Info().Msg("relay socket closed, stopping")
				return nil
			}
			r.logger.Warn().Err(err).Msg("relay read error")
			continue
		}
		if n > r.bufSize {
			r.stats.received.Add(1)
			r.stats.oversize.Add(1)
			r.logger.Debug().Str("src", src.String()).Int("buffer", r.bufSize).Msg("dropping oversize packet")
			continue
		}
		r.forward(buf[:n], src)
	}
}

func (r *Relay) forward(datagram []byte, src netip.AddrPort) {
	r.stats.received.Add(1)
	src = netip.AddrPortFrom(src.Addr().Unmap(), src.Port())
	sender, _, err := protocol.ParseMediaPacket(datagram)
	if err != nil {
		r.stats.malformed.Add(1)
		r.logger.Debug().Str("src", src.String()).Int("bytes", len(datagram)).Msg("dropping malformed packet")
		return
	}

	// Snapshot is taken by the registry; writes happen without any lock.
	for _, t := range r.targets.MediaTargets(r.Kind) {
		if string(t.Identity) == sender || t.Addr == src {
			continue
		}
		if _, err := r.conn.WriteToUDPAddrPort(datagram, t.Addr); err != nil {
			r.stats.sendErrors.Add(1)
			r.logger.Debug().Err(err).Str("dst", t.Addr.String()).Str("username", string(t.Identity)).Msg("relay write error")
			continue
		}
		r.stats.forwarded.Add(1)
	}
}

func (r *Relay) Stats() Stats {
	return r.stats.snapshot()
}
