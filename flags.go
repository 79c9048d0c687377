package evq

// Flags is the event record's bitfield, partitioned into three regions:
// request bits (0-15), result/active bits (16-23), and an EOF/error byte
// (24-31).
type Flags uint32

// Request bits (lower 16).
const (
	FlagRead Flags = 1 << iota
	FlagWrite
	FlagOneshot
	FlagDelete
	FlagSocket
	FlagTimer
	FlagPid
	FlagSignal
	FlagWinMsg
	FlagDirWatch
	FlagObject
	FlagAIO
	FlagCallback
	FlagCallbackThread
	FlagSocketAccConn
	FlagPending
)

// Result/active bits (16-23).
const (
	FlagActive Flags = 1 << (iota + 16)
	FlagReadRes
	FlagWriteRes
	FlagTimeoutRes
)

const (
	requestMask = Flags(0x0000ffff)
	resultMask  = Flags(0x00ff0000)
	eofShift    = 24
	eofMask     = Flags(0xff000000)
)

// EOFByte extracts the EOF/error byte (bits 24-31).
func (f Flags) EOFByte() uint8 { return uint8((f & eofMask) >> eofShift) }

// WithEOFByte returns f with its EOF/error byte replaced.
func (f Flags) WithEOFByte(b uint8) Flags {
	return (f &^ eofMask) | (Flags(b) << eofShift)
}

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// Has reports whether any of the given request/result bits is set.
func (f Flags) Has(bit Flags) bool { return f.has(bit) }
