package network

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressFromString(t *testing.T) {
	t.Run("valid addresses", func(t *testing.T) {
		testcases := []struct {
			inp string
			exp string
		}{
			{":8080", "/ip4/0.0.0.0/tcp/8080"},
			{"example.com:7070", "/dns4/example.com/tcp/7070"},
			{"213.44.87.1:32512", "/ip4/213.44.87.1/tcp/32512"},
			{"[2004:eb1::1]:8080", "/ip6/2004:eb1::1/tcp/8080"},
			{"grpc://example.com:7070", "/dns4/example.com/tcp/7070"},
			{"grpcs://example.com:7070", "/dns4/example.com/tcp/7070/tls"},
			{"/ip4/1.2.3.4/tcp/80", "/ip4/1.2.3.4/tcp/80"},
		}

		var addr Address
		for _, tc := range testcases {
			require.NoError(t, addr.FromString(tc.inp), tc.inp)
			require.Equal(t, tc.exp, addr.String(), tc.inp)
		}
	})

	t.Run("invalid addresses", func(t *testing.T) {
		for _, s := range []string{"grpcs://example.com", "not an address"} {
			_, err := AddressFromString(s)
			require.Error(t, err, s)
		}
	})
}

func TestAddress_HostAddrString(t *testing.T) {
	testcases := []struct {
		ma  string
		exp string
		uri string
	}{
		{"/dns4/kestrel.bigcorp.com/tcp/8080", "kestrel.bigcorp.com:8080", "kestrel.bigcorp.com:8080"},
		{"/ip4/172.16.14.1/tcp/8080", "172.16.14.1:8080", "172.16.14.1:8080"},
		{"/ip4/192.168.0.1/tcp/8888/tls", "192.168.0.1:8888", "grpcs://192.168.0.1:8888"},
	}

	for _, tc := range testcases {
		addr, err := AddressFromString(tc.ma)
		require.NoError(t, err)

		require.Equal(t, tc.exp, addr.HostAddr(), tc.ma)
		require.Equal(t, tc.uri, addr.URIAddr(), tc.ma)
	}
}

func TestAddress_TLSEnabled(t *testing.T) {
	testCases := [...]struct {
		input   string
		wantTLS bool
	}{
		{"/dns4/localhost/tcp/8080", false},
		{"/dns4/localhost/tcp/8080/tls", true},
		{"/tls/dns4/localhost/tcp/8080", true},
		{"grpc://localhost:8080", false},
		{"grpcs://localhost:8080", true},
	}

	var addr Address

	for _, test := range testCases {
		err := addr.FromString(test.input)
		require.NoError(t, err)

		require.Equal(t, test.wantTLS, addr.TLSEnabled(), test.input)
	}
}

type testIterator []string

func (t testIterator) IterateAddresses(f func(string) bool) {
	for i := range t {
		if f(t[i]) {
			break
		}
	}
}

func (t testIterator) NumberOfAddresses() int {
	return len(t)
}

func TestAddressGroup_FromIterator(t *testing.T) {
	var ag AddressGroup

	require.Error(t, ag.FromIterator(testIterator{}))
	require.Error(t, ag.FromIterator(testIterator{"/ip4/1.2.3.4/tcp/80", "not an address"}))

	require.NoError(t, ag.FromIterator(testIterator{"/ip4/1.2.3.4/tcp/80", "/ip4/1.2.3.4/tcp/81/tls"}))
	require.Len(t, ag, 2)
	require.True(t, ag[0].TLSEnabled())

	var other AddressGroup
	require.NoError(t, other.FromStringSlice([]string{"1.2.3.4:80"}))
	require.True(t, ag.Intersects(other))

	require.NoError(t, other.FromStringSlice([]string{"1.2.3.4:82"}))
	require.False(t, ag.Intersects(other))
}

func TestVerifyMultiAddress(t *testing.T) {
	testCases := []struct {
		input string
		err   error
	}{
		{"/ip4/1.2.3.4/tcp/80", nil},
		{"/ip6/1:2:3:4::/tcp/80", nil},
		{"/dns4/1.2.3.4/tcp/80", nil},
		{"/dns4/1.2.3.4/tcp/80/tls", nil},
		{"/tls/dns4/1.2.3.4/tcp/80", errUnsupportedNetworkProtocol},
		{"/dns4/1.2.3.4/tls/tcp/80", errUnsupportedTransportProtocol},
		{"/dns4/1.2.3.4/tcp/80/wss", errUnsupportedPresentationProtocol},
	}

	for _, test := range testCases {
		err := VerifyMultiAddress(testIterator{test.input})
		if test.err != nil {
			require.ErrorIs(t, err, test.err, test.input)
		} else {
			require.NoError(t, err, test.input)
		}
	}
}
