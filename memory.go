package evmrs

import "github.com/evmrs/evmrs/u256"

// maxMemoryWords caps memory growth so offset/len arithmetic never
// overflows int64; far beyond anything reachable within the block gas
// limit, it exists purely as a defensive ceiling.
const maxMemoryWords = 1 << 32

// Memory is the EVM's byte-addressable linear memory: always a multiple of
// 32 bytes once any access has occurred, growing on demand with quadratic
// gas accounting computed via the memoryGasCost formula in gas.go.
type Memory struct {
	store       []byte
	lastCost    int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Len() int { return len(m.store) }

func (m *Memory) Data() []byte { return m.store }

// wordsFor returns the word count needed to cover offset+size bytes, or an
// error if offset/size overflow or exceed the defensive ceiling.
func wordsFor(offset, size int64) (int64, error) {
	if offset < 0 || size < 0 {
		return 0, FailInvalidMemoryAccess
	}
	if size == 0 {
		return 0, nil
	}
	end := offset + size
	if end < offset {
		return 0, FailOutOfGas
	}
	words := wordCount256(end)
	if words > maxMemoryWords {
		return 0, FailOutOfGas
	}
	return words, nil
}

// growthCost reports the incremental gas required to grow memory to cover
// offset+size bytes, without mutating memory. Zero-length requests never
// grow memory and cost nothing.
func (m *Memory) growthCost(offset, size int64) (int64, error) {
	if size == 0 {
		return 0, nil
	}
	newWords, err := wordsFor(offset, size)
	if err != nil {
		return 0, err
	}
	oldWords := wordCount256(int64(len(m.store)))
	if newWords <= oldWords {
		return 0, nil
	}
	return memoryExpansionGas(oldWords, newWords), nil
}

func (m *Memory) resize(newWords int64) {
	newLen := newWords * 32
	if int64(len(m.store)) < newLen {
		grown := make([]byte, newLen)
		copy(grown, m.store)
		m.store = grown
	}
}

// charge grows memory to cover offset+size (if needed) and deducts the
// growth cost from gasLeft. Returns FailOutOfGas if gas is insufficient.
func (m *Memory) charge(offset, size int64, gasLeft *int64) error {
	if size == 0 {
		return nil
	}
	cost, err := m.growthCost(offset, size)
	if err != nil {
		return err
	}
	if cost > *gasLeft {
		return FailOutOfGas
	}
	*gasLeft -= cost
	words, err := wordsFor(offset, size)
	if err != nil {
		return err
	}
	m.resize(words)
	return nil
}

// GetMutSlice grows memory to cover [offset, offset+size) charging the gas
// delta, and returns a direct slice into the backing store.
func (m *Memory) GetMutSlice(offset, size int64, gasLeft *int64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if err := m.charge(offset, size, gasLeft); err != nil {
		return nil, err
	}
	return m.store[offset : offset+size], nil
}

// GetWord reads a big-endian 32-byte word at offset, growing memory first.
func (m *Memory) GetWord(offset int64, gasLeft *int64) (u256.Word, error) {
	if err := m.charge(offset, 32, gasLeft); err != nil {
		return u256.Zero, err
	}
	var b [32]byte
	copy(b[:], m.store[offset:offset+32])
	return u256.FromBigEndian32(b), nil
}

// SetWord writes a 32-byte big-endian word at offset, growing memory first.
func (m *Memory) SetWord(offset int64, v u256.Word, gasLeft *int64) error {
	if err := m.charge(offset, 32, gasLeft); err != nil {
		return err
	}
	b := v.Bytes32()
	copy(m.store[offset:offset+32], b[:])
	return nil
}

// SetByte writes a single byte at offset, growing memory first.
func (m *Memory) SetByte(offset int64, v byte, gasLeft *int64) error {
	if err := m.charge(offset, 1, gasLeft); err != nil {
		return err
	}
	m.store[offset] = v
	return nil
}

// Set copies value into memory at offset without charging gas (the caller
// must have already charged via GetMutSlice/charge); used for internal
// copies after growth has been accounted for, e.g. copying a sub-call's
// output into the CALL family's return region.
func (m *Memory) Set(offset int64, value []byte) {
	if len(value) == 0 {
		return
	}
	copy(m.store[offset:offset+int64(len(value))], value)
}

// CopyWithin grows memory to cover max(src,dst)+len, charges the delta, and
// copies len bytes from src to dst, tolerating overlap (MCOPY semantics).
func (m *Memory) CopyWithin(dst, src, length int64, gasLeft *int64) error {
	if length == 0 {
		return nil
	}
	hi := dst
	if src > hi {
		hi = src
	}
	if err := m.charge(hi, length, gasLeft); err != nil {
		return err
	}
	copy(m.store[dst:dst+length], m.store[src:src+length])
	return nil
}
