package evmrs

import (
	"encoding/hex"
	"fmt"
)

// Address is a 20-byte account address.
type Address [20]byte

func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > 20 {
		b = b[len(b)-20:]
	}
	copy(a[20-len(b):], b)
	return a
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Hash is a 32-byte word, used for storage keys/values, code hashes and
// block hashes.
type Hash [32]byte

func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(h[32-len(b):], b)
	return h
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Log is the event record produced by LOG0-LOG4, handed to the host via
// Host.EmitLog. Consensus encoding (RLP, bloom filters) is the host's
// concern, not the interpreter core's.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

func (l Log) String() string {
	return fmt.Sprintf("Log{address=%s topics=%d data=%d bytes}", l.Address, len(l.Topics), len(l.Data))
}
