package core

// Frame is a raw outbound payload, already encoded.
type Frame []byte

// SessionID is the ephemeral transport session id, unique per connection.
type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
