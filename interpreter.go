package evmrs

import (
	"github.com/evmrs/evmrs/cache"
	"github.com/evmrs/evmrs/u256"
)

// execStatus is the interpreter's internal run state.
type execStatus int

const (
	statusRunning execStatus = iota
	statusStopped
	statusReturned
	statusRevert
)

// Config tunes interpreter-level behavior: revision selection, whether the
// run is steppable, and call-depth limits. AnalysisCacheSize and
// HashCacheSize are carried but not read by the interpreter: the
// process-wide caches below are created at package initialisation with the
// default sizes.
type Config struct {
	Revision          Revision
	Steppable         bool
	AnalysisCacheSize int
	HashCacheSize     int
	MaxCallDepth      int
	Observer          Observer
}

const defaultMaxCallDepth = 1024

// sharedAnalysisCache and sharedHashCache are process-wide, read-mostly
// caches safe for concurrent use because the underlying LRU guards its own
// state.
var sharedAnalysisCache = cache.NewAnalysisCache(cache.DefaultAnalysisCacheSize)
var sharedHashCache = cache.NewHashCache(cache.DefaultHashCacheSize)

// Interpreter is the state machine that owns one top-level (or nested)
// invocation's stack, memory, code reader, gas counter and output. Lifetime
// is exactly one call: it is created, driven by Run or StepN, then consumed
// to yield a result.
type Interpreter struct {
	message  *ExecutionMessage
	host     Host
	revision Revision
	config   Config

	code   *CodeReader
	stack  *Stack
	memory *Memory

	gasLeft   int64
	gasRefund int64

	output              []byte
	lastCallReturnData  []byte
	status              execStatus

	steppable      bool
	stepsRemaining *int64

	observer Observer
}

// NewInterpreter constructs an interpreter for one invocation, building or
// fetching a cached CodeAnalysis keyed by the message's code hash.
func NewInterpreter(host Host, cfg Config, msg *ExecutionMessage, code []byte) *Interpreter {
	analysis := analysisFor(code, msg.CodeHash)
	obs := cfg.Observer
	if obs == nil {
		obs = NoopObserver{}
	}
	if cfg.MaxCallDepth == 0 {
		cfg.MaxCallDepth = defaultMaxCallDepth
	}
	return &Interpreter{
		message:  msg,
		host:     host,
		revision: cfg.Revision,
		config:   cfg,
		code:     NewCodeReader(code, analysis),
		stack:    NewStack(),
		memory:   NewMemory(),
		gasLeft:  msg.Gas,
		status:   statusRunning,
		steppable: cfg.Steppable,
		observer: obs,
	}
}

// NewSteppableInterpreter is as NewInterpreter but resumes from a prior
// snapshot's PC/gas/stack/memory/refund/return-data, and runs at most
// `steps` instructions before yielding a StepResult.
func NewSteppableInterpreter(host Host, cfg Config, msg *ExecutionMessage, code []byte, pc int64, gasRefund int64, stackWords []u256.Word, mem []byte, lastCallReturnData []byte, steps int64) *Interpreter {
	cfg.Steppable = true
	interp := NewInterpreter(host, cfg, msg, code)
	interp.code.SetPC(pc)
	interp.gasRefund = gasRefund
	for _, w := range stackWords {
		_ = interp.stack.Push(w)
	}
	interp.memory.store = append([]byte(nil), mem...)
	interp.lastCallReturnData = lastCallReturnData
	interp.stepsRemaining = &steps
	return interp
}

func analysisFor(code []byte, codeHash *Hash) *CodeAnalysis {
	if codeHash == nil || codeHash.IsZero() {
		return AnalyzeCode(code)
	}
	key := codeHashKey(*codeHash)
	if v, ok := sharedAnalysisCache.Get(key); ok {
		if a, ok := v.(*CodeAnalysis); ok {
			return a
		}
	}
	a := AnalyzeCode(code)
	sharedAnalysisCache.Put(key, a)
	return a
}

// codeHashKey reduces a 32-byte code hash to its low 64 bits, which are
// already uniformly distributed.
func codeHashKey(h Hash) uint64 {
	var v uint64
	for i := 24; i < 32; i++ {
		v = v<<8 | uint64(h[i])
	}
	return v
}

// consumeGas deducts cost from gasLeft, failing with FailOutOfGas on
// underflow (gas is modeled as an overflow-checked integer).
func (i *Interpreter) consumeGas(cost int64) error {
	if cost < 0 || i.gasLeft < cost {
		i.gasLeft = 0
		return FailOutOfGas
	}
	i.gasLeft -= cost
	return nil
}

func (i *Interpreter) requireNotStatic() error {
	if i.message.IsStatic() {
		return FailStaticCallViolation
	}
	return nil
}

// Run drives the dispatch loop until status leaves Running or (in
// steppable mode) the step budget is exhausted, then builds an
// ExecutionResult.
func (i *Interpreter) Run() ExecutionResult {
	fail := i.loop()
	return i.buildExecutionResult(fail)
}

// StepN drives the dispatch loop for at most the configured step budget and
// returns a resumable StepResult.
func (i *Interpreter) StepN() StepResult {
	fail := i.loop()
	return i.buildStepResult(fail)
}

func (i *Interpreter) loop() FailStatus {
	for i.status == statusRunning {
		if i.steppable && i.stepsRemaining != nil {
			if *i.stepsRemaining == 0 {
				return FailNone
			}
			*i.stepsRemaining--
		}
		op, ok := i.code.Get()
		if !ok {
			if i.code.PC() >= int64(i.code.CodeLen()) {
				i.status = statusStopped
				break
			}
			return FailInvalidInstruction
		}
		table := JumpTableFor(i.revision)
		entry := &table[op]
		if entry.execute == nil {
			return FailInvalidInstruction
		}
		if entry.undefined || i.revision < entry.minRevision {
			return FailUndefinedInstruction
		}
		if err := i.stack.CheckUnderflow(entry.minStack); err != nil {
			return err.(FailStatus)
		}
		i.observer.PreOp(i)
		if err := i.consumeGas(entry.constantGas); err != nil {
			return err.(FailStatus)
		}
		if err := entry.execute(i); err != nil {
			if fs, ok := err.(FailStatus); ok {
				return fs
			}
			return FailInternalError
		}
		i.observer.PostOp(i)
	}
	return FailNone
}

func (i *Interpreter) buildExecutionResult(fail FailStatus) ExecutionResult {
	if fail != FailNone {
		return ExecutionResult{
			StatusCode: fail.StatusCode(),
			GasLeft:    0,
			GasRefund:  0,
			Output:     nil,
		}
	}
	switch i.status {
	case statusRevert:
		return ExecutionResult{StatusCode: StatusRevert, GasLeft: i.gasLeft, GasRefund: 0, Output: i.output}
	default:
		return ExecutionResult{StatusCode: StatusSuccess, GasLeft: i.gasLeft, GasRefund: i.gasRefund, Output: i.output}
	}
}

func (i *Interpreter) buildStepResult(fail FailStatus) StepResult {
	res := StepResult{
		Revision:            i.revision,
		PC:                  uint64(i.code.PC()),
		GasLeft:             i.gasLeft,
		GasRefund:           i.gasRefund,
		Output:              i.output,
		Stack:               wordsToBytes(i.stack.Data()),
		Memory:              i.memory.Data(),
		LastCallReturnData:  i.lastCallReturnData,
	}
	if fail != FailNone {
		res.StepStatusCode = StepFailed
		res.StatusCode = fail.StatusCode()
		return res
	}
	switch i.status {
	case statusRunning:
		res.StepStatusCode = StepRunning
		res.StatusCode = StatusSuccess
	case statusStopped:
		res.StepStatusCode = StepStopped
		res.StatusCode = StatusSuccess
	case statusReturned:
		res.StepStatusCode = StepReturned
		res.StatusCode = StatusSuccess
	case statusRevert:
		res.StepStatusCode = StepReverted
		res.StatusCode = StatusRevert
	}
	return res
}

func wordsToBytes(ws []u256.Word) [][32]byte {
	out := make([][32]byte, len(ws))
	for idx, w := range ws {
		out[idx] = w.Bytes32()
	}
	return out
}

// Execute is the top-level entry point: run a complete
// invocation to finality and return its ExecutionResult.
func Execute(host Host, cfg Config, msg *ExecutionMessage, code []byte) ExecutionResult {
	interp := NewInterpreter(host, cfg, msg, code)
	return interp.Run()
}

// Step is the steppable entry point: resume from a snapshot and
// run at most `steps` instructions, returning a resumable StepResult.
func Step(host Host, cfg Config, msg *ExecutionMessage, code []byte, pc int64, gasRefund int64, stack []u256.Word, mem []byte, lastCallReturnData []byte, steps int64) StepResult {
	interp := NewSteppableInterpreter(host, cfg, msg, code, pc, gasRefund, stack, mem, lastCallReturnData, steps)
	return interp.StepN()
}
