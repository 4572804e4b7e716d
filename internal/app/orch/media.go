package orch

import (
	"fmt"
	"net/netip"

	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
)

// RegisterEndpoint records where id receives packets of kind. An
// unspecified host is replaced with the control peer's address.
func (o *Orchestrator) RegisterEndpoint(id domain.Identity, kind domain.MediaKind, addr protocol.Address, peer netip.Addr) error {
	var host netip.Addr
	if addr.Host != "" {
		h, err := netip.ParseAddr(addr.Host)
		if err != nil {
			return fmt.Errorf("%s endpoint host %q: %w", kind, addr.Host, err)
		}
		host = h.Unmap()
	}
	if !host.IsValid() || host.IsUnspecified() {
		host = peer.Unmap()
	}
	return o.Registry.SetEndpoint(id, kind, netip.AddrPortFrom(host, addr.Port))
}
