package netmap

// State groups the current system state parameters.
type State interface {
	// CurrentEpoch returns the number of the current network epoch.
	CurrentEpoch() uint64
}
