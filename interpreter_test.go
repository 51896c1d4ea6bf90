package evmrs

import (
	"testing"

	"github.com/evmrs/evmrs/u256"
)

// fakeHost is a hand-written Host stand-in: this module has no mocking
// library in its dependency set, so tests drive it directly against a
// minimal in-memory implementation.
type fakeHost struct {
	balances map[Address]u256.Word
	storage  map[Address]map[Hash]Hash
	exists   map[Address]bool

	lastCallMsg *ExecutionMessage
	callResult  CallResult
	emittedLogs []Log
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		balances: make(map[Address]u256.Word),
		storage:  make(map[Address]map[Hash]Hash),
		exists:   make(map[Address]bool),
	}
}

func (h *fakeHost) GetBalance(addr Address) u256.Word { return h.balances[addr] }

func (h *fakeHost) GetStorage(addr Address, key Hash) Hash {
	if m, ok := h.storage[addr]; ok {
		return m[key]
	}
	return Hash{}
}

func (h *fakeHost) SetStorage(addr Address, key, value Hash) StorageStatus {
	if h.storage[addr] == nil {
		h.storage[addr] = make(map[Hash]Hash)
	}
	h.storage[addr][key] = value
	return StorageModified
}

func (h *fakeHost) GetTransientStorage(addr Address, key Hash) Hash { return Hash{} }
func (h *fakeHost) SetTransientStorage(addr Address, key, value Hash) {}

func (h *fakeHost) AccessAccount(addr Address) AccessStatus { return Warm }
func (h *fakeHost) AccessStorage(addr Address, key Hash) AccessStatus { return Warm }

func (h *fakeHost) AccountExists(addr Address) bool { return h.exists[addr] }
func (h *fakeHost) GetCodeSize(addr Address) int    { return 0 }
func (h *fakeHost) GetCodeHash(addr Address) Hash   { return Hash{} }
func (h *fakeHost) CopyCode(addr Address, offset int, buf []byte) int { return 0 }

func (h *fakeHost) EmitLog(l Log) { h.emittedLogs = append(h.emittedLogs, l) }
func (h *fakeHost) SelfDestruct(addr, beneficiary Address) (firstTime bool) { return true }

func (h *fakeHost) Call(msg *ExecutionMessage) CallResult {
	h.lastCallMsg = msg
	return h.callResult
}

func (h *fakeHost) GetTxContext() TxContext       { return TxContext{} }
func (h *fakeHost) GetBlockHash(number int64) Hash { return Hash{} }

// TestExecuteEmptyCode mirrors the original interpreter's empty_code
// scenario: no code runs, status is success with all gas left unspent.
func TestExecuteEmptyCode(t *testing.T) {
	host := newFakeHost()
	msg := &ExecutionMessage{Gas: 1000}
	res := Execute(host, Config{Revision: Cancun}, msg, []byte{})
	if res.StatusCode != StatusSuccess {
		t.Fatalf("StatusCode = %v, want StatusSuccess", res.StatusCode)
	}
	if res.GasLeft != 1000 {
		t.Errorf("GasLeft = %d, want 1000 (no code ran)", res.GasLeft)
	}
}

// TestStepPCAfterEnd mirrors pc_after_end: once execution runs off the end
// of code, PC equals the code length and status is Stopped.
func TestStepPCAfterEnd(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(JUMPDEST)}
	msg := &ExecutionMessage{Gas: 1000}
	res := Step(host, Config{Revision: Cancun}, msg, code, 0, 0, nil, nil, nil, 100)
	if res.StepStatusCode != StepStopped {
		t.Fatalf("StepStatusCode = %v, want StepStopped", res.StepStatusCode)
	}
	if res.PC != uint64(len(code)) {
		t.Errorf("PC = %d, want %d (code length)", res.PC, len(code))
	}
}

// TestStepPCOnData mirrors pc_on_data: stepping past a PUSH opcode lands the
// PC on the first byte after its immediate data, never inside it.
func TestStepPCOnData(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(PUSH2), 0x01, 0x02, byte(STOP)}
	msg := &ExecutionMessage{Gas: 1000}
	res := Step(host, Config{Revision: Cancun}, msg, code, 0, 0, nil, nil, nil, 1)
	if res.PC != 3 {
		t.Errorf("PC after stepping past PUSH2 = %d, want 3", res.PC)
	}
}

// TestStepZeroSteps mirrors zero_steps: a steppable run with no step budget
// executes nothing and reports Running at the starting PC.
func TestStepZeroSteps(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(ADD), byte(ADD)}
	msg := &ExecutionMessage{Gas: 1000}
	stack := []u256.Word{u256.FromUint64(1), u256.FromUint64(2)}
	res := Step(host, Config{Revision: Cancun}, msg, code, 0, 0, stack, nil, nil, 0)
	if res.StepStatusCode != StepRunning {
		t.Fatalf("StepStatusCode = %v, want StepRunning", res.StepStatusCode)
	}
	if res.PC != 0 {
		t.Errorf("PC = %d, want 0 (nothing executed)", res.PC)
	}
	if len(res.Stack) != 2 {
		t.Errorf("Stack = %v, want unchanged 2-element stack", res.Stack)
	}
}

// TestStepAddOneStep mirrors add_one_step: stack [1,2], code [ADD,ADD],
// stepping once executes only the first ADD.
func TestStepAddOneStep(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(ADD), byte(ADD)}
	msg := &ExecutionMessage{Gas: 1000}
	stack := []u256.Word{u256.FromUint64(1), u256.FromUint64(2)}
	res := Step(host, Config{Revision: Cancun}, msg, code, 0, 0, stack, nil, nil, 1)
	if res.StepStatusCode != StepRunning {
		t.Fatalf("StepStatusCode = %v, want StepRunning", res.StepStatusCode)
	}
	if len(res.Stack) != 1 {
		t.Fatalf("Stack length = %d, want 1", len(res.Stack))
	}
	got := u256.FromBigEndian32(res.Stack[0])
	if got.Big().Int64() != 3 {
		t.Errorf("Stack[0] = %v, want 3", got)
	}
	if res.GasLeft != 1000-GasVeryLow {
		t.Errorf("GasLeft = %d, want %d (one ADD charged)", res.GasLeft, 1000-GasVeryLow)
	}
}

// TestStepAddSingleOp runs a lone ADD to completion: stack [1,2], code [ADD].
func TestStepAddSingleOp(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(ADD)}
	msg := &ExecutionMessage{Gas: 1000}
	stack := []u256.Word{u256.FromUint64(1), u256.FromUint64(2)}
	res := Step(host, Config{Revision: Cancun}, msg, code, 0, 0, stack, nil, nil, 100)
	if res.StepStatusCode != StepStopped {
		t.Fatalf("StepStatusCode = %v, want StepStopped", res.StepStatusCode)
	}
	got := u256.FromBigEndian32(res.Stack[0])
	if got.Big().Int64() != 3 {
		t.Errorf("Stack[0] = %v, want 3", got)
	}
}

// TestExecuteAddTwice mirrors add_twice: stack [1,2,3], code [ADD,ADD] run
// to completion yields stack [6] and charges gas for both ops.
func TestExecuteAddTwice(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(ADD), byte(ADD)}
	msg := &ExecutionMessage{Gas: 1000}
	stack := []u256.Word{u256.FromUint64(1), u256.FromUint64(2), u256.FromUint64(3)}
	res := Step(host, Config{Revision: Cancun}, msg, code, 0, 0, stack, nil, nil, 100)
	if res.StepStatusCode != StepStopped {
		t.Fatalf("StepStatusCode = %v, want StepStopped", res.StepStatusCode)
	}
	if len(res.Stack) != 1 {
		t.Fatalf("Stack length = %d, want 1", len(res.Stack))
	}
	got := u256.FromBigEndian32(res.Stack[0])
	if got.Big().Int64() != 6 {
		t.Errorf("Stack[0] = %v, want 6", got)
	}
	wantGas := int64(1000) - 2*GasVeryLow
	if res.GasLeft != wantGas {
		t.Errorf("GasLeft = %d, want %d (two ADDs charged)", res.GasLeft, wantGas)
	}
}

// TestExecuteLongRunCompletes is this core's equivalent of the original's
// tail_call_elimination scenario: the dispatch loop is an explicit for loop
// (not recursive), so a long straight-line run can't blow a host call stack;
// this exercises that a few thousand sequential ops still complete cleanly.
func TestExecuteLongRunCompletes(t *testing.T) {
	host := newFakeHost()
	const n = 5000
	code := make([]byte, 0, n*2+1)
	for i := 0; i < n; i++ {
		code = append(code, byte(PUSH1), 0x01, byte(POP))
	}
	code = append(code, byte(STOP))
	msg := &ExecutionMessage{Gas: 10_000_000}
	res := Execute(host, Config{Revision: Cancun}, msg, code)
	if res.StatusCode != StatusSuccess {
		t.Fatalf("StatusCode = %v, want StatusSuccess", res.StatusCode)
	}
}

// TestExecuteAddNotEnoughGas mirrors add_not_enough_gas: gas=2 is not enough
// to cover ADD's cost of 3.
func TestExecuteAddNotEnoughGas(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(ADD)}
	msg := &ExecutionMessage{Gas: 2}
	stack := []u256.Word{u256.FromUint64(1), u256.FromUint64(2)}
	res := Step(host, Config{Revision: Cancun}, msg, code, 0, 0, stack, nil, nil, 100)
	if res.StatusCode != StatusOutOfGas {
		t.Errorf("StatusCode = %v, want StatusOutOfGas", res.StatusCode)
	}
}

// TestCallConstructsExpectedMessage mirrors the original's call scenario: it
// inspects the exact ExecutionMessage a CALL opcode hands to the host.
func TestCallConstructsExpectedMessage(t *testing.T) {
	host := newFakeHost()
	host.callResult = CallResult{StatusCode: StatusSuccess, GasLeft: 50}

	caller := Address{0x01}
	target := Address{0x02}
	host.balances[caller] = u256.FromUint64(1_000_000)

	code := []byte{byte(CALL)}
	msg := &ExecutionMessage{
		Recipient: caller,
		Sender:    Address{0x09},
		Gas:       1_000_000,
		Depth:     0,
	}

	argsData := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	mem := make([]byte, 32)
	copy(mem[0:4], argsData)

	// Stack is pushed bottom-to-top; CALL pops top-first as
	// (gas, addr, value, argsOffset, argsLen, retOffset, retLen), so the
	// bottom-to-top push order is the reverse of that.
	var addrWord u256.Word
	{
		var b [32]byte
		copy(b[12:], target[:])
		addrWord = u256.FromBigEndian32(b)
	}
	stackWords := []u256.Word{
		u256.FromUint64(0),      // retLen
		u256.FromUint64(0),      // retOffset
		u256.FromUint64(4),      // argsLen
		u256.FromUint64(0),      // argsOffset
		u256.Zero,               // value
		addrWord,                // addr
		u256.FromUint64(100000), // gas
	}

	res := Step(host, Config{Revision: Cancun}, msg, code, 0, 0, stackWords, mem, nil, 1)
	if res.StepStatusCode == StepFailed {
		t.Fatalf("step failed: %v", res.StatusCode)
	}

	got := host.lastCallMsg
	if got == nil {
		t.Fatal("host.Call was never invoked")
	}
	if got.Kind != CallKindCall {
		t.Errorf("Kind = %v, want CallKindCall", got.Kind)
	}
	if got.Flags.IsStatic() {
		t.Error("Flags should not be static for a plain CALL")
	}
	if got.Depth != 1 {
		t.Errorf("Depth = %d, want 1 (parent depth + 1)", got.Depth)
	}
	if got.Recipient != target {
		t.Errorf("Recipient = %v, want target %v", got.Recipient, target)
	}
	if got.Sender != caller {
		t.Errorf("Sender = %v, want caller's own recipient %v", got.Sender, caller)
	}
	if string(got.Input) != string(argsData) {
		t.Errorf("Input = %v, want %v", got.Input, argsData)
	}
	if got.Value != ([32]byte{}) {
		t.Errorf("Value = %v, want zero", got.Value)
	}
	if got.CodeAddress != target {
		t.Errorf("CodeAddress = %v, want %v", got.CodeAddress, target)
	}
}

// TestExecutePush0OnIstanbulIsUndefined checks that an opcode defined only
// in a later revision reports UndefinedInstruction rather than
// InvalidInstruction on an earlier one.
func TestExecutePush0OnIstanbulIsUndefined(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(PUSH0)}
	msg := &ExecutionMessage{Gas: 1000}
	res := Execute(host, Config{Revision: Istanbul}, msg, code)
	if res.StatusCode != StatusUndefinedInstruction {
		t.Errorf("StatusCode = %v, want StatusUndefinedInstruction", res.StatusCode)
	}
}

// TestExecutePush0OnShanghaiSucceeds confirms the same opcode runs cleanly
// once the revision defines it.
func TestExecutePush0OnShanghaiSucceeds(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(PUSH0), byte(POP), byte(STOP)}
	msg := &ExecutionMessage{Gas: 1000}
	res := Execute(host, Config{Revision: Shanghai}, msg, code)
	if res.StatusCode != StatusSuccess {
		t.Errorf("StatusCode = %v, want StatusSuccess", res.StatusCode)
	}
}

// TestStepResumeInsidePushDataIsInvalid checks that resuming a step with the
// PC inside a PUSH immediate fails as InvalidInstruction instead of
// executing the data byte as an opcode.
func TestStepResumeInsidePushDataIsInvalid(t *testing.T) {
	host := newFakeHost()
	// PUSH1 0x5b JUMPDEST: byte 2 is a real JUMPDEST, byte 1 is PUSH1's
	// immediate data and happens to also encode JUMPDEST's byte value.
	code := []byte{byte(PUSH1), byte(JUMPDEST), byte(JUMPDEST)}
	msg := &ExecutionMessage{Gas: 1000}
	res := Step(host, Config{Revision: Cancun}, msg, code, 1, 0, nil, nil, nil, 1)
	if res.StatusCode != StatusInvalidInstruction {
		t.Errorf("StatusCode = %v, want StatusInvalidInstruction", res.StatusCode)
	}
}

// TestLog2EmitsTopicsTopOfStackFirst checks that LOG2's topics reach the
// host top-of-stack first: topic 0 is the word just below offset and length,
// which is the reverse of the order the words were pushed.
func TestLog2EmitsTopicsTopOfStackFirst(t *testing.T) {
	host := newFakeHost()
	code := []byte{byte(LOG2)}
	msg := &ExecutionMessage{Gas: 100_000}
	topic0 := u256.FromUint64(0xaaaa)
	topic1 := u256.FromUint64(0xbbbb)
	// Stack pushed bottom-to-top; LOG2 pops (offset, length, topic0, topic1)
	// top-first, so push order is the reverse of that.
	stackWords := []u256.Word{topic1, topic0, u256.FromUint64(0), u256.FromUint64(0)}
	res := Step(host, Config{Revision: Cancun}, msg, code, 0, 0, stackWords, nil, nil, 1)
	if res.StepStatusCode == StepFailed {
		t.Fatalf("step failed: %v", res.StatusCode)
	}
	if len(host.emittedLogs) != 1 {
		t.Fatalf("emittedLogs = %d, want 1", len(host.emittedLogs))
	}
	got := host.emittedLogs[0].Topics
	if len(got) != 2 {
		t.Fatalf("Topics length = %d, want 2", len(got))
	}
	if got[0] != Hash(topic0.Bytes32()) {
		t.Errorf("Topics[0] = %v, want topic0 %v", got[0], Hash(topic0.Bytes32()))
	}
	if got[1] != Hash(topic1.Bytes32()) {
		t.Errorf("Topics[1] = %v, want topic1 %v", got[1], Hash(topic1.Bytes32()))
	}
}
