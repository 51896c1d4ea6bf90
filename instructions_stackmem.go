package evmrs

import "github.com/evmrs/evmrs/u256"

func opPop(i *Interpreter) error {
	if _, err := i.stack.Pop(); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

func opMLoad(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	offset, overflow := loc.Current().Uint64WithOverflow()
	if overflow {
		return FailOutOfGas
	}
	w, err := i.memory.GetWord(int64(offset), &i.gasLeft)
	if err != nil {
		return err
	}
	loc.Push(w)
	i.code.Next()
	return nil
}

func opMStore(i *Interpreter) error {
	vals, err := i.stack.PopN(2)
	if err != nil {
		return err
	}
	offset, overflow := vals[0].Uint64WithOverflow()
	if overflow {
		return FailOutOfGas
	}
	if err := i.memory.SetWord(int64(offset), vals[1], &i.gasLeft); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

func opMStore8(i *Interpreter) error {
	vals, err := i.stack.PopN(2)
	if err != nil {
		return err
	}
	offset, overflow := vals[0].Uint64WithOverflow()
	if overflow {
		return FailOutOfGas
	}
	if err := i.memory.SetByte(int64(offset), vals[1].LeastSignificantByte(), &i.gasLeft); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

func (i *Interpreter) chargeStorageAccess(addr Address, key Hash) error {
	if i.revision < Berlin {
		return i.consumeGas(GasSloadPreBerlin)
	}
	switch i.host.AccessStorage(addr, key) {
	case Warm:
		return i.consumeGas(GasSloadWarm)
	default:
		return i.consumeGas(GasSloadCold)
	}
}

func opSLoad(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	key := Hash(loc.Current().Bytes32())
	if err := i.chargeStorageAccess(i.message.Recipient, key); err != nil {
		return err
	}
	val := i.host.GetStorage(i.message.Recipient, key)
	loc.Push(hashToWord(val))
	i.code.Next()
	return nil
}

func opSStore(i *Interpreter) error {
	if err := i.requireNotStatic(); err != nil {
		return err
	}
	if i.revision >= Istanbul && i.gasLeft <= 2300 {
		return FailOutOfGas
	}
	vals, err := i.stack.PopN(2)
	if err != nil {
		return err
	}
	key := Hash(vals[0].Bytes32())
	value := Hash(vals[1].Bytes32())

	cold := i.revision >= Berlin && i.host.AccessStorage(i.message.Recipient, key) == Cold
	status := i.host.SetStorage(i.message.Recipient, key, value)
	dynGas, refund := sstoreGasAndRefund(i.revision, status)
	if cold {
		dynGas += GasSloadCold
	}
	if err := i.consumeGas(dynGas); err != nil {
		return err
	}
	i.gasRefund += refund
	i.code.Next()
	return nil
}

func opTLoad(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	key := Hash(loc.Current().Bytes32())
	loc.Push(hashToWord(i.host.GetTransientStorage(i.message.Recipient, key)))
	i.code.Next()
	return nil
}

func opTStore(i *Interpreter) error {
	if err := i.requireNotStatic(); err != nil {
		return err
	}
	vals, err := i.stack.PopN(2)
	if err != nil {
		return err
	}
	key := Hash(vals[0].Bytes32())
	value := Hash(vals[1].Bytes32())
	i.host.SetTransientStorage(i.message.Recipient, key, value)
	i.code.Next()
	return nil
}

func opJump(i *Interpreter) error {
	dest, err := i.stack.Pop()
	if err != nil {
		return err
	}
	// Grounded on the original's intentional steppable/non-steppable gas
	// split (DESIGN.md Open Question 2): steppable charges the base 8 only,
	// non-steppable folds in the PC-advance/no-op-skip cost as an extra 1.
	if !i.steppable {
		if err := i.consumeGas(1); err != nil {
			return err
		}
	}
	return i.code.TryJump(dest)
}

func opJumpI(i *Interpreter) error {
	vals, err := i.stack.PopN(2)
	if err != nil {
		return err
	}
	dest, cond := vals[0], vals[1]
	if cond.IsZero() {
		i.code.Next()
		return nil
	}
	if !i.steppable {
		if err := i.consumeGas(1); err != nil {
			return err
		}
	}
	return i.code.TryJump(dest)
}

func opPC(i *Interpreter) error {
	return pushWord(i, u256.FromUint64(uint64(i.code.PC())))
}

func opMSize(i *Interpreter) error {
	return pushWord(i, u256.FromUint64(uint64(i.memory.Len())))
}

func opGas(i *Interpreter) error {
	return pushWord(i, u256.FromUint64(uint64(i.gasLeft)))
}

func opJumpDest(i *Interpreter) error {
	i.code.Next()
	return nil
}

func opMCopy(i *Interpreter) error {
	vals, err := i.stack.PopN(3)
	if err != nil {
		return err
	}
	dst, overflow1 := vals[0].Uint64WithOverflow()
	src, overflow2 := vals[1].Uint64WithOverflow()
	length, overflow3 := vals[2].Uint64WithOverflow()
	if overflow1 || overflow2 || overflow3 {
		return FailOutOfGas
	}
	if length > 0 {
		if err := i.consumeGas(GasCopyWord * wordCount256(int64(length))); err != nil {
			return err
		}
	}
	if err := i.memory.CopyWithin(int64(dst), int64(src), int64(length), &i.gasLeft); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

func makePush(n int) func(*Interpreter) error {
	return func(i *Interpreter) error {
		data := i.code.GetPushData(n)
		if err := i.stack.Push(data); err != nil {
			return err
		}
		i.code.Next()
		return nil
	}
}

func opPush0(i *Interpreter) error {
	if err := i.stack.Push(u256.Zero); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

func makeDup(n int) func(*Interpreter) error {
	return func(i *Interpreter) error {
		if err := i.stack.Dup(n); err != nil {
			return err
		}
		i.code.Next()
		return nil
	}
}

func makeSwap(n int) func(*Interpreter) error {
	return func(i *Interpreter) error {
		if err := i.stack.SwapWithTop(n); err != nil {
			return err
		}
		i.code.Next()
		return nil
	}
}
