package sfu

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/dkeye/lanhub/internal/core"
	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	addrA = netip.MustParseAddrPort("10.0.0.1:7000")
	addrB = netip.MustParseAddrPort("10.0.0.2:7000")
	addrC = netip.MustParseAddrPort("10.0.0.3:7000")
)

func threeTargets() []core.MediaTarget {
	return []core.MediaTarget{
		{Identity: "A", Addr: addrA},
		{Identity: "B", Addr: addrB},
		{Identity: "C", Addr: addrC},
	}
}

func TestForwardSkipsSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := NewMockPacketConn(ctrl)
	targets := NewMockTargetSource(ctrl)
	r := NewRelay(domain.MediaVideo, conn, targets, 0)

	pkt := protocol.AppendMediaPacket(nil, "A", []byte{1, 2, 3})
	targets.EXPECT().MediaTargets(domain.MediaVideo).Return(threeTargets())
	conn.EXPECT().WriteToUDPAddrPort(pkt, addrB).Return(len(pkt), nil)
	conn.EXPECT().WriteToUDPAddrPort(pkt, addrC).Return(len(pkt), nil)

	r.forward(pkt, addrA)

	assert.Equal(t, Stats{Received: 1, Forwarded: 2}, r.Stats())
}

func TestForwardDropsMalformed(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := NewMockPacketConn(ctrl)
	targets := NewMockTargetSource(ctrl)
	r := NewRelay(domain.MediaAudio, conn, targets, 0)

	r.forward([]byte{9, 0, 0, 0, 'A'}, addrA)
	r.forward([]byte{1, 0}, addrA)

	assert.Equal(t, Stats{Received: 2, DroppedMalformed: 2}, r.Stats())
}

func TestForwardSwallowsSendErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := NewMockPacketConn(ctrl)
	targets := NewMockTargetSource(ctrl)
	r := NewRelay(domain.MediaAudio, conn, targets, 0)

	pkt := protocol.AppendMediaPacket(nil, "C", []byte("voice"))
	targets.EXPECT().MediaTargets(domain.MediaAudio).Return(threeTargets())
	conn.EXPECT().WriteToUDPAddrPort(pkt, addrA).Return(0, errors.New("network unreachable"))
	conn.EXPECT().WriteToUDPAddrPort(pkt, addrB).Return(len(pkt), nil)

	r.forward(pkt, addrC)

	assert.Equal(t, Stats{Received: 1, Forwarded: 1, SendErrors: 1}, r.Stats())
}

func TestRunStopsOnClosedSocket(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := NewMockPacketConn(ctrl)
	targets := NewMockTargetSource(ctrl)
	r := NewRelay(domain.MediaVideo, conn, targets, 1500)

	pkt := protocol.AppendMediaPacket(nil, "B", []byte("frame"))
	gomock.InOrder(
		conn.EXPECT().ReadFromUDPAddrPort(gomock.Any()).DoAndReturn(func(b []byte) (int, netip.AddrPort, error) {
			return copy(b, pkt), addrB, nil
		}),
		conn.EXPECT().ReadFromUDPAddrPort(gomock.Any()).Return(0, netip.AddrPort{}, net.ErrClosed),
	)
	targets.EXPECT().MediaTargets(domain.MediaVideo).Return([]core.MediaTarget{{Identity: "B", Addr: addrB}, {Identity: "A", Addr: addrA}})
	conn.EXPECT().WriteToUDPAddrPort(pkt, addrA).Return(len(pkt), nil)

	require.NoError(t, r.Run(context.Background()))
}

func TestRunDropsTruncatedDatagram(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := NewMockPacketConn(ctrl)
	targets := NewMockTargetSource(ctrl)
	r := NewRelay(domain.MediaVideo, conn, targets, 1500)

	fits := protocol.AppendMediaPacket(nil, "B", make([]byte, 1500-4-1))
	require.Len(t, fits, 1500)
	gomock.InOrder(
		conn.EXPECT().ReadFromUDPAddrPort(gomock.Any()).DoAndReturn(func(b []byte) (int, netip.AddrPort, error) {
			require.Len(t, b, 1501)
			pkt := protocol.AppendMediaPacket(nil, "B", make([]byte, 4000))
			return copy(b, pkt), addrB, nil
		}),
		conn.EXPECT().ReadFromUDPAddrPort(gomock.Any()).DoAndReturn(func(b []byte) (int, netip.AddrPort, error) {
			return copy(b, fits), addrB, nil
		}),
		conn.EXPECT().ReadFromUDPAddrPort(gomock.Any()).Return(0, netip.AddrPort{}, net.ErrClosed),
	)
	targets.EXPECT().MediaTargets(domain.MediaVideo).Return([]core.MediaTarget{{Identity: "A", Addr: addrA}})
	conn.EXPECT().WriteToUDPAddrPort(fits, addrA).Return(len(fits), nil)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, Stats{Received: 2, Forwarded: 1, DroppedOversize: 1}, r.Stats())
}

type staticTargets []core.MediaTarget

func (s staticTargets) MediaTargets(domain.MediaKind) []core.MediaTarget { return s }

func listenLoopback(t *testing.T) *net.UDPConn {
	t.Helper()
	c, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func addrOf(c *net.UDPConn) netip.AddrPort {
	ap := c.LocalAddr().(*net.UDPAddr).AddrPort()
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

func TestRelayLoopback(t *testing.T) {
	relayConn := listenLoopback(t)
	a, b, c := listenLoopback(t), listenLoopback(t), listenLoopback(t)
	targets := staticTargets{
		{Identity: "alice", Addr: addrOf(a)},
		{Identity: "bob", Addr: addrOf(b)},
		{Identity: "carol", Addr: addrOf(c)},
	}

	m := NewRelayManager()
	m.Add(NewRelay(domain.MediaVideo, relayConn, targets, 0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	pkt := protocol.AppendMediaPacket(nil, "alice", []byte("jpeg-bytes"))
	_, err := a.WriteToUDPAddrPort(pkt, addrOf(relayConn))
	require.NoError(t, err)

	buf := make([]byte, 2048)
	for _, rc := range []*net.UDPConn{b, c} {
		require.NoError(t, rc.SetReadDeadline(time.Now().Add(2*time.Second)))
		n, _, err := rc.ReadFromUDPAddrPort(buf)
		require.NoError(t, err)
		assert.Equal(t, pkt, buf[:n])
	}

	require.NoError(t, a.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = a.ReadFromUDPAddrPort(buf)
	assert.Error(t, err)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
	assert.Equal(t, uint64(2), m.Stats()["video"].Forwarded)
}
