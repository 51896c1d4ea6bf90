package evmrs

import "github.com/evmrs/evmrs/u256"

// CodeReader owns the raw bytecode plus its CodeAnalysis and tracks the
// current program counter in source-bytecode coordinates.
type CodeReader struct {
	code     []byte
	analysis *CodeAnalysis
	pc       int64
}

func NewCodeReader(code []byte, analysis *CodeAnalysis) *CodeReader {
	return &CodeReader{code: code, analysis: analysis}
}

// PC returns the current program counter in source-bytecode coordinates.
func (r *CodeReader) PC() int64 { return r.pc }

func (r *CodeReader) SetPC(pc int64) { r.pc = pc }

func (r *CodeReader) CodeLen() int { return len(r.code) }

// Get returns the opcode at the current PC, or (0, false) if the PC has run
// past the end of code (the dispatch loop treats this as an implicit STOP)
// or if the current byte falls inside PUSH data or otherwise isn't a valid
// instruction start (the dispatch loop treats this as InvalidInstruction).
func (r *CodeReader) Get() (OpCode, bool) {
	if r.pc >= int64(len(r.code)) {
		return 0, false
	}
	if r.analysis.TagAt(int(r.pc)) == TagDataOrInvalid {
		return 0, false
	}
	return OpCode(r.code[r.pc]), true
}

// Next advances the PC past the current instruction: 1 byte for a plain
// opcode, 1+N bytes for a PUSHN.
func (r *CodeReader) Next() {
	if r.pc >= int64(len(r.code)) {
		return
	}
	op := OpCode(r.code[r.pc])
	if op.IsPush() {
		r.pc += int64(1 + op.PushSize())
	} else {
		r.pc++
	}
}

// TryJump validates dest as a JUMPDEST and, if valid, sets the PC there.
// Returns FailBadJumpDestination otherwise.
func (r *CodeReader) TryJump(dest u256.Word) error {
	u, overflow := dest.Uint64WithOverflow()
	if overflow || u >= uint64(len(r.code)) {
		return FailBadJumpDestination
	}
	if !r.analysis.IsValidJumpDest(int64(u)) {
		return FailBadJumpDestination
	}
	r.pc = int64(u)
	return nil
}

// GetPushData reads the n-byte immediate following a PUSHn opcode at the
// current PC, zero-extending past the end of code, and returns it as a
// Word without advancing the PC (the caller calls Next afterward).
func (r *CodeReader) GetPushData(n int) u256.Word {
	var buf [32]byte
	start := r.pc + 1
	for i := 0; i < n; i++ {
		idx := start + int64(i)
		if idx < int64(len(r.code)) {
			buf[32-n+i] = r.code[idx]
		}
	}
	return u256.FromBigEndian32(buf)
}
