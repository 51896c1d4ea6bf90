package evmrs

import (
	"testing"

	"github.com/evmrs/evmrs/u256"
)

// BenchmarkOpAdd benchmarks the ADD opcode (two 256-bit integer addition).
func BenchmarkOpAdd(b *testing.B) {
	interp := NewInterpreter(newFakeHost(), Config{Revision: Cancun}, &ExecutionMessage{Gas: 1 << 40}, []byte{byte(ADD)})
	x := u256.FromUint64(0xdeadbeef)
	y := u256.FromUint64(0xcafebabe)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interp.stack.Reset()
		_ = interp.stack.Push(x)
		_ = interp.stack.Push(y)
		_ = opAdd(interp)
	}
}

// BenchmarkOpMul benchmarks the MUL opcode.
func BenchmarkOpMul(b *testing.B) {
	interp := NewInterpreter(newFakeHost(), Config{Revision: Cancun}, &ExecutionMessage{Gas: 1 << 40}, []byte{byte(MUL)})
	x := u256.FromUint64(0xdeadbeef)
	y := u256.FromUint64(0xcafebabe)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interp.stack.Reset()
		_ = interp.stack.Push(x)
		_ = interp.stack.Push(y)
		_ = opMul(interp)
	}
}

// BenchmarkOpKeccak256 benchmarks KECCAK256 over a 32-byte input.
func BenchmarkOpKeccak256(b *testing.B) {
	interp := NewInterpreter(newFakeHost(), Config{Revision: Cancun}, &ExecutionMessage{Gas: 1 << 40}, []byte{byte(KECCAK256)})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interp.stack.Reset()
		interp.memory = NewMemory()
		interp.gasLeft = 1 << 40
		_ = interp.stack.Push(u256.FromUint64(32)) // size
		_ = interp.stack.Push(u256.Zero)           // offset
		_ = opKeccak256(interp)
	}
}

// BenchmarkSStoreColdWarm benchmarks the SSTORE opcode's cold/warm-gated
// cost path.
func BenchmarkSStoreColdWarm(b *testing.B) {
	host := newFakeHost()
	addr := Address{0x01}
	interp := NewInterpreter(host, Config{Revision: Cancun}, &ExecutionMessage{Gas: 1 << 40, Recipient: addr}, []byte{byte(SSTORE)})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interp.stack.Reset()
		interp.gasLeft = 1 << 40
		_ = interp.stack.Push(u256.FromUint64(uint64(i + 1))) // value
		_ = interp.stack.Push(u256.FromUint64(uint64(i)))     // key
		_ = opSStore(interp)
	}
}

// BenchmarkSLoad benchmarks the SLOAD opcode against a pre-populated store.
func BenchmarkSLoad(b *testing.B) {
	host := newFakeHost()
	addr := Address{0x01}
	for i := 0; i < 100; i++ {
		key := BytesToHash(u256.FromUint64(uint64(i)).Bytes32()[:])
		val := BytesToHash(u256.FromUint64(uint64(i + 1)).Bytes32()[:])
		host.SetStorage(addr, key, val)
	}
	interp := NewInterpreter(host, Config{Revision: Cancun}, &ExecutionMessage{Gas: 1 << 40, Recipient: addr}, []byte{byte(SLOAD)})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interp.stack.Reset()
		interp.gasLeft = 1 << 40
		_ = interp.stack.Push(u256.FromUint64(uint64(i % 100)))
		_ = opSLoad(interp)
	}
}

// BenchmarkCall benchmarks a CALL into an empty callee.
func BenchmarkCall(b *testing.B) {
	host := newFakeHost()
	caller := Address{0x01}
	callee := Address{0x02}
	host.balances[caller] = u256.FromUint64(1_000_000_000)
	host.callResult = CallResult{StatusCode: StatusSuccess, GasLeft: 90_000}

	interp := NewInterpreter(host, Config{Revision: Cancun}, &ExecutionMessage{Gas: 1 << 40, Recipient: caller}, []byte{byte(CALL)})
	callFn := makeCall(callParams{kind: CallKindCall, hasValue: true, chargeValue: true})

	var calleeWord u256.Word
	{
		var buf [32]byte
		copy(buf[12:], callee[:])
		calleeWord = u256.FromBigEndian32(buf)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interp.stack.Reset()
		interp.gasLeft = 1 << 40
		_ = interp.stack.Push(u256.FromUint64(0))  // retLen
		_ = interp.stack.Push(u256.FromUint64(0))  // retOffset
		_ = interp.stack.Push(u256.FromUint64(0))  // argsLen
		_ = interp.stack.Push(u256.FromUint64(0))  // argsOffset
		_ = interp.stack.Push(u256.Zero)           // value
		_ = interp.stack.Push(calleeWord)          // addr
		_ = interp.stack.Push(u256.FromUint64(100_000)) // gas
		_ = callFn(interp)
	}
}

// BenchmarkMemoryExpansion benchmarks memory growth via MSTORE to
// progressively larger offsets.
func BenchmarkMemoryExpansion(b *testing.B) {
	interp := NewInterpreter(newFakeHost(), Config{Revision: Cancun}, &ExecutionMessage{Gas: 1 << 40}, []byte{byte(MSTORE)})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interp.memory = NewMemory()
		interp.gasLeft = 1 << 40
		for _, offset := range []uint64{0, 32, 96, 224, 480, 992} {
			interp.stack.Reset()
			_ = interp.stack.Push(u256.FromUint64(0xdeadbeef))
			_ = interp.stack.Push(u256.FromUint64(offset))
			_ = opMStore(interp)
		}
	}
}

// BenchmarkStackOperations benchmarks a mix of PUSH, DUP, SWAP, and POP.
func BenchmarkStackOperations(b *testing.B) {
	interp := NewInterpreter(newFakeHost(), Config{Revision: Cancun}, &ExecutionMessage{Gas: 1 << 40}, []byte{byte(PUSH1), 0x42, byte(PUSH1), 0x43})
	pushFn := makePush(1)
	dupFn := makeDup(1)
	swapFn := makeSwap(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interp.stack.Reset()
		interp.code.SetPC(0)
		_ = pushFn(interp)
		_ = pushFn(interp)
		_ = dupFn(interp)
		_ = swapFn(interp)
		_, _ = interp.stack.Pop()
		_, _ = interp.stack.Pop()
		_, _ = interp.stack.Pop()
	}
}

// BenchmarkJumpTableLookup benchmarks jump table lookup for every opcode
// slot across all 256 entries.
func BenchmarkJumpTableLookup(b *testing.B) {
	jt := JumpTableFor(Cancun)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for op := 0; op < 256; op++ {
			entry := &jt[OpCode(op)]
			_ = entry.constantGas
		}
	}
}
