package mode

// Mode represents enumeration of Shard work modes.
type Mode uint32

const (
	// ReadWrite is a Mode value for shard that is available
	// for read and write operations. Default shard mode.
	ReadWrite Mode = 0

	// DegradedReadOnly is a Mode value for shard that is set automatically
	// after a certain number of errors is encountered. It is the same as
	// `mode.Degraded` but also is read-only.
	DegradedReadOnly = Degraded | ReadOnly
)

const (
	// ReadOnly is a Mode value for shard that does not
	// accept write operation but is readable.
	ReadOnly Mode = 1 << iota

	// Degraded is a Mode value for shard when the metabase is unavailable.
	// It is hard to perform some modifying operations in this mode, thus it can only be set by an administrator.
	Degraded
)

func (m Mode) String() string {
	switch m {
	default:
		return "UNDEFINED"
	case ReadWrite:
		return "READ_WRITE"
	case ReadOnly:
		return "READ_ONLY"
	case Degraded:
		return "DEGRADED_READ_WRITE"
	case DegradedReadOnly:
		return "DEGRADED_READ_ONLY"
	}
}

// Parse converts string representation of the mode. Both short ("degraded")
// and canonical ("DEGRADED_READ_WRITE") names are accepted.
func Parse(s string) (Mode, bool) {
	switch s {
	case "READ_WRITE", "read-write":
		return ReadWrite, true
	case "READ_ONLY", "read-only":
		return ReadOnly, true
	case "DEGRADED_READ_WRITE", "DEGRADED", "degraded":
		return Degraded, true
	case "DEGRADED_READ_ONLY", "degraded-read-only":
		return DegradedReadOnly, true
	default:
		return 0, false
	}
}

// NoMetabase returns true iff m is operating without the metabase.
func (m Mode) NoMetabase() bool {
	return m&Degraded != 0
}

// ReadOnly returns true iff m prohibits modifying operations with shard.
func (m Mode) ReadOnly() bool {
	return m&ReadOnly != 0
}
