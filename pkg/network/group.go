package network

import (
	"errors"
	"fmt"
	"sort"

	"github.com/multiformats/go-multiaddr"
)

// AddressGroup represents list of network addresses of the node.
//
// List is sorted by priority of use.
type AddressGroup []Address

// StringifyGroup returns concatenation of all addresses
// from the AddressGroup.
//
// The result is order-dependent.
func StringifyGroup(x AddressGroup) string {
	var s string

	x.IterateAddresses(func(addr Address) bool {
		s += addr.String()
		return false
	})

	return s
}

// IterateAddresses iterates over all network addresses of the node.
//
// Breaks iterating on handler's true return.
//
// Handler should not be nil.
func (x AddressGroup) IterateAddresses(f func(Address) bool) {
	for i := range x {
		if f(x[i]) {
			break
		}
	}
}

// Len returns number of addresses in AddressGroup.
func (x AddressGroup) Len() int {
	return len(x)
}

// Less returns true if i-th address in AddressGroup supports TLS
// and j-th one doesn't.
func (x AddressGroup) Less(i, j int) bool {
	return x[i].TLSEnabled() && !x[j].TLSEnabled()
}

// Swap swaps i-th and j-th addresses in AddressGroup.
func (x AddressGroup) Swap(i, j int) {
	x[i], x[j] = x[j], x[i]
}

// MultiAddressIterator is an interface of network address group.
type MultiAddressIterator interface {
	// Must iterate over network addresses and pass each one
	// to the handler until it returns true.
	IterateAddresses(func(string) bool)

	// Must return number of addresses in group.
	NumberOfAddresses() int
}

// FromStringSlice forms AddressGroup from a string slice.
//
// Returns an error in the absence of addresses or if any of the addresses are incorrect.
func (x *AddressGroup) FromStringSlice(addr []string) error {
	if len(addr) == 0 {
		return errors.New("missing network addresses")
	}

	res := make(AddressGroup, len(addr))
	for i := range addr {
		var a Address
		if err := a.FromString(addr[i]); err != nil {
			return err
		}
		res[i] = a
	}

	*x = res
	return nil
}

// FromIterator forms AddressGroup from MultiAddressIterator structure.
// The result is sorted with sort.Sort.
//
// Returns an error in the absence of addresses or if any of the addresses are incorrect.
func (x *AddressGroup) FromIterator(iter MultiAddressIterator) error {
	as := *x

	addrNum := iter.NumberOfAddresses()
	if addrNum <= 0 {
		return errors.New("missing network addresses")
	}

	if cap(as) >= addrNum {
		as = as[:0]
	} else {
		as = make(AddressGroup, 0, addrNum)
	}

	err := iterateParsedAddresses(iter, func(s Address) error {
		as = append(as, s)
		return nil
	})

	if err == nil {
		sort.Sort(as)
		*x = as
	}

	return err
}

// iterateParsedAddresses parses each address from MultiAddressIterator and passes it to f
// until 1st parsing failure or f's error.
func iterateParsedAddresses(iter MultiAddressIterator, f func(s Address) error) (err error) {
	iter.IterateAddresses(func(s string) bool {
		var a Address

		err = a.FromString(s)
		if err != nil {
			err = fmt.Errorf("could not parse address from string: %w", err)
			return true
		}

		err = f(a)

		return err != nil
	})

	return
}

// WriteToStrings returns text representations of the addresses.
func (x AddressGroup) WriteToStrings() []string {
	addrs := make([]string, len(x))

	for i := range x {
		addrs[i] = x[i].String()
	}

	return addrs
}

// Intersects checks if two AddressGroup have
// at least one common address.
func (x AddressGroup) Intersects(x2 AddressGroup) bool {
	for i := range x {
		for j := range x2 {
			if x[i].Equal(x2[j]) {
				return true
			}
		}
	}

	return false
}

var (
	errUnsupportedNetworkProtocol      = errors.New("unsupported network protocol in the address")
	errUnsupportedTransportProtocol    = errors.New("unsupported transport protocol in the address")
	errUnsupportedPresentationProtocol = errors.New("unsupported presentation protocol in the address")
)

// VerifyMultiAddress validates multiaddresses of the node. Each address must
// be `/<network>/<host>/tcp/<port>` optionally followed by `/tls`, where
// network is one of ip4, ip6 or dns4.
func VerifyMultiAddress(iter MultiAddressIterator) error {
	if iter.NumberOfAddresses() == 0 {
		return errors.New("missing network addresses")
	}

	var err error

	iter.IterateAddresses(func(s string) bool {
		var ma multiaddr.Multiaddr

		ma, err = multiaddr.NewMultiaddr(s)
		if err != nil {
			err = fmt.Errorf("could not parse multiaddr %q: %w", s, err)
			return true
		}

		err = checkProtocols(ma.Protocols())

		return err != nil
	})

	return err
}

func checkProtocols(protos []multiaddr.Protocol) error {
	if len(protos) < 2 {
		return errUnsupportedNetworkProtocol
	}

	switch protos[0].Code {
	case multiaddr.P_IP4, multiaddr.P_IP6, multiaddr.P_DNS4:
	default:
		return errUnsupportedNetworkProtocol
	}

	if protos[1].Code != multiaddr.P_TCP {
		return errUnsupportedTransportProtocol
	}

	if len(protos) > 2 {
		if len(protos) > 3 || protos[2].Code != multiaddr.P_TLS {
			return errUnsupportedPresentationProtocol
		}
	}

	return nil
}
