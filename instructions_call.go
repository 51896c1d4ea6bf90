package evmrs

import "github.com/evmrs/evmrs/u256"

// callGasAccountAccess charges the account-access component of a CALL
// family opcode's cost: flat pre-Berlin, cold/warm-gated Berlin+.
func (i *Interpreter) callGasAccountAccess(addr Address) int64 {
	if i.revision < Berlin {
		return GasCallBasePreBerlin
	}
	if i.host.AccessAccount(addr) == Warm {
		return GasBalanceWarm
	}
	return GasBalanceCold
}

// endowment applies the 1/64 rule: the gas forwarded to a sub-call is
// capped at gasLeft - gasLeft/64, further capped by the caller-requested
// amount.
func endowment(requested, gasLeft int64) int64 {
	limit := gasLeft - gasLeft/64
	if requested < limit {
		return requested
	}
	return limit
}

type callParams struct {
	kind        CallKind
	hasValue    bool // CALL, CALLCODE: an explicit value operand is on the stack
	chargeValue bool // CALL only: the 9000/25000 value-transfer surcharge applies
	forceStatic bool // STATICCALL: callee always runs under the static flag
}

func makeCall(p callParams) func(*Interpreter) error {
	return func(i *Interpreter) error {
		nArgs := 6
		if p.hasValue {
			nArgs = 7
		}
		vals, err := i.stack.PopN(nArgs)
		if err != nil {
			return err
		}
		gasParam := vals[0]
		addrWord := vals[1]
		idx := 2
		var value u256.Word
		if p.hasValue {
			value = vals[idx]
			idx++
		}
		argsOffsetW, argsLenW, retOffsetW, retLenW := vals[idx], vals[idx+1], vals[idx+2], vals[idx+3]

		if p.chargeValue && !value.IsZero() {
			if err := i.requireNotStatic(); err != nil {
				return err
			}
		}

		if i.message.Depth+1 >= i.config.MaxCallDepth {
			if err := i.stack.Push(u256.Zero); err != nil {
				return err
			}
			i.lastCallReturnData = nil
			i.code.Next()
			return nil
		}

		addr := Address(addrWord.Bytes32()[12:])
		cost := i.callGasAccountAccess(addr)
		if p.chargeValue && !value.IsZero() {
			cost += GasCallValueTransfer
			if !i.host.AccountExists(addr) {
				cost += GasCallNewAccount
			}
		}
		if err := i.consumeGas(cost); err != nil {
			return err
		}

		argsOffset, ovA := argsOffsetW.Uint64WithOverflow()
		argsLen, ovB := argsLenW.Uint64WithOverflow()
		retOffset, ovC := retOffsetW.Uint64WithOverflow()
		retLen, ovD := retLenW.Uint64WithOverflow()
		if ovA || ovB || ovC || ovD {
			return FailOutOfGas
		}

		var argsData []byte
		if argsLen > 0 {
			argsData, err = i.memory.GetMutSlice(int64(argsOffset), int64(argsLen), &i.gasLeft)
			if err != nil {
				return err
			}
			argsData = append([]byte(nil), argsData...)
		}
		// Ensure the return-data region is expanded/charged even before the
		// callee runs, matching step 4 ("both args_* and ret_* slots are
		// memory-expanded").
		if retLen > 0 {
			if _, err := i.memory.GetMutSlice(int64(retOffset), int64(retLen), &i.gasLeft); err != nil {
				return err
			}
		}

		if p.hasValue && !value.IsZero() && value.Gt(i.host.GetBalance(i.message.Recipient)) {
			if err := i.stack.Push(u256.Zero); err != nil {
				return err
			}
			i.lastCallReturnData = nil
			i.code.Next()
			return nil
		}

		requestedGas := gasParam.Uint64Saturating()
		gas := endowment(int64(requestedGas), i.gasLeft)
		stipend := int64(0)
		if p.hasValue && !value.IsZero() {
			stipend = GasCallStipend
		}
		i.gasLeft -= gas
		gasToCallee := gas + stipend

		flags := i.message.Flags
		if p.forceStatic {
			flags = FlagStatic
		}

		// Recipient/sender/value per call kind: CALL runs the callee in its own
		// address with the caller as sender; CALLCODE and DELEGATECALL both run
		// the callee's code inside the current frame's address, but only
		// DELEGATECALL also preserves the original sender and value.
		recipient := i.message.Recipient
		sender := i.message.Recipient
		var valBytes [32]byte
		switch p.kind {
		case CallKindCall:
			recipient = addr
			sender = i.message.Recipient
			valBytes = value.Bytes32()
		case CallKindCallCode:
			valBytes = value.Bytes32()
		case CallKindDelegateCall:
			sender = i.message.Sender
			valBytes = i.message.Value
		}

		msg := &ExecutionMessage{
			Kind:        p.kind,
			Flags:       flags,
			Depth:       i.message.Depth + 1,
			Gas:         gasToCallee,
			Recipient:   recipient,
			Sender:      sender,
			Input:       argsData,
			Value:       valBytes,
			CodeAddress: addr,
		}

		result := i.host.Call(msg)
		i.gasLeft += result.GasLeft
		i.gasRefund += result.GasRefund
		i.lastCallReturnData = result.Output
		if retLen > 0 {
			n := int(retLen)
			if n > len(result.Output) {
				n = len(result.Output)
			}
			i.memory.Set(int64(retOffset), result.Output[:n])
		}

		success := u256.Zero
		if result.StatusCode == StatusSuccess {
			success = u256.One
		}
		if err := i.stack.Push(success); err != nil {
			return err
		}
		i.code.Next()
		return nil
	}
}

func makeCreate(isCreate2 bool) func(*Interpreter) error {
	return func(i *Interpreter) error {
		if err := i.requireNotStatic(); err != nil {
			return err
		}
		if err := i.consumeGas(GasCreate); err != nil {
			return err
		}
		n := 3
		if isCreate2 {
			n = 4
		}
		vals, err := i.stack.PopN(n)
		if err != nil {
			return err
		}
		value, offsetW, lenW := vals[0], vals[1], vals[2]
		var salt u256.Word
		if isCreate2 {
			salt = vals[3]
		}
		if i.message.Depth+1 >= i.config.MaxCallDepth {
			if err := i.stack.Push(u256.Zero); err != nil {
				return err
			}
			i.lastCallReturnData = nil
			i.code.Next()
			return nil
		}
		offset, ovA := offsetW.Uint64WithOverflow()
		length, ovB := lenW.Uint64WithOverflow()
		if ovA || ovB {
			return FailOutOfGas
		}
		if i.revision >= Shanghai && int64(length) > MaxInitCodeSize {
			return FailOutOfGas
		}
		if i.revision >= Shanghai {
			if err := i.consumeGas(InitCodeWordGas * wordCount256(int64(length))); err != nil {
				return err
			}
		}
		if isCreate2 {
			if err := i.consumeGas(Create2HashWordGas * wordCount256(int64(length))); err != nil {
				return err
			}
		}
		var initCode []byte
		if length > 0 {
			data, err := i.memory.GetMutSlice(int64(offset), int64(length), &i.gasLeft)
			if err != nil {
				return err
			}
			initCode = append([]byte(nil), data...)
		}

		if !value.IsZero() && value.Gt(i.host.GetBalance(i.message.Recipient)) {
			if err := i.stack.Push(u256.Zero); err != nil {
				return err
			}
			i.lastCallReturnData = nil
			i.code.Next()
			return nil
		}

		gas := endowment(i.gasLeft, i.gasLeft)
		i.gasLeft -= gas

		kind := CallKindCreate
		if isCreate2 {
			kind = CallKindCreate2
		}
		var saltBytes [32]byte
		if isCreate2 {
			saltBytes = salt.Bytes32()
		}
		msg := &ExecutionMessage{
			Kind:        kind,
			Flags:       0,
			Depth:       i.message.Depth + 1,
			Gas:         gas,
			Recipient:   Address{},
			Sender:      i.message.Recipient,
			Input:       initCode,
			Value:       value.Bytes32(),
			Create2Salt: saltBytes,
		}
		result := i.host.Call(msg)
		i.gasLeft += result.GasLeft
		i.gasRefund += result.GasRefund

		if result.StatusCode == StatusSuccess {
			if err := i.stack.Push(addressToWord(result.CreateAddress)); err != nil {
				return err
			}
			i.lastCallReturnData = nil
		} else {
			if err := i.stack.Push(u256.Zero); err != nil {
				return err
			}
			i.lastCallReturnData = result.Output
		}
		i.code.Next()
		return nil
	}
}
