package core

// Frame is a marshaled wire message ready for a transport write.
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it. TrySend must never
// block: a full send queue is reported as an error and the frame is lost.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
