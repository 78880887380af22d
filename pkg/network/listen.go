package network

import (
	"net"

	manet "github.com/multiformats/go-multiaddr/net"
)

// Listen announces on the local network address.
func Listen(addr Address) (net.Listener, error) {
	if addr.TLSEnabled() {
		addr.ma = addr.ma.Decapsulate(tls)
	}

	mLis, err := manet.Listen(addr.ma)
	if err != nil {
		return nil, err
	}

	return manet.NetListener(mLis), nil
}
