package evmrs

import "github.com/evmrs/evmrs/u256"

// AccessStatus reports whether an account/storage-slot access is the first
// touch this transaction (Cold, expensive) or a repeat (Warm, cheap), the
// EIP-2929 bookkeeping that lives entirely on the host side.
type AccessStatus int

const (
	Cold AccessStatus = iota
	Warm
)

// StorageStatus is the host's classification of an SSTORE, driving the
// nine-case cost/refund matrix in sstoreGasAndRefund.
type StorageStatus int

const (
	StorageAssigned StorageStatus = iota
	StorageAdded
	StorageDeleted
	StorageModified
	StorageDeletedAdded
	StorageModifiedDeleted
	StorageDeletedRestored
	StorageAddedDeleted
	StorageModifiedRestored
)

// TxContext is the per-transaction/per-block environment data the host
// exposes to ORIGIN, GASPRICE, COINBASE, TIMESTAMP, etc.
type TxContext struct {
	GasPrice    u256.Word
	Origin      Address
	Coinbase    Address
	BlockNumber int64
	Timestamp   int64
	GasLimit    int64
	PrevRandao  u256.Word
	ChainID     u256.Word
	BaseFee     u256.Word
	BlobBaseFee u256.Word
}

// CallResult is what the host returns from Call for both message calls and
// creates.
type CallResult struct {
	StatusCode    StatusCode
	GasLeft       int64
	GasRefund     int64
	Output        []byte
	CreateAddress Address
}

// Host is the typed facade over the EVMC-like host callback surface: account
// and storage reads/writes, logs, self-destruct, nested calls, and
// transaction/block context.
type Host interface {
	GetBalance(addr Address) u256.Word
	GetStorage(addr Address, key Hash) Hash
	SetStorage(addr Address, key, value Hash) StorageStatus
	GetTransientStorage(addr Address, key Hash) Hash
	SetTransientStorage(addr Address, key, value Hash)

	AccessAccount(addr Address) AccessStatus
	AccessStorage(addr Address, key Hash) AccessStatus

	AccountExists(addr Address) bool
	GetCodeSize(addr Address) int
	GetCodeHash(addr Address) Hash
	CopyCode(addr Address, offset int, buf []byte) int

	EmitLog(l Log)
	SelfDestruct(addr, beneficiary Address) (firstTime bool)

	Call(msg *ExecutionMessage) CallResult

	GetTxContext() TxContext
	GetBlockHash(number int64) Hash
}
