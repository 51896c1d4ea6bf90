package evmrs

func opStop(i *Interpreter) error {
	i.status = statusStopped
	return nil
}

func opReturn(i *Interpreter) error {
	vals, err := i.stack.PopN(2)
	if err != nil {
		return err
	}
	offset, overflow1 := vals[0].Uint64WithOverflow()
	length, overflow2 := vals[1].Uint64WithOverflow()
	if overflow1 || overflow2 {
		return FailOutOfGas
	}
	if length > 0 {
		data, err := i.memory.GetMutSlice(int64(offset), int64(length), &i.gasLeft)
		if err != nil {
			return err
		}
		i.output = append([]byte(nil), data...)
	}
	i.status = statusReturned
	return nil
}

func opRevert(i *Interpreter) error {
	vals, err := i.stack.PopN(2)
	if err != nil {
		return err
	}
	offset, overflow1 := vals[0].Uint64WithOverflow()
	length, overflow2 := vals[1].Uint64WithOverflow()
	if overflow1 || overflow2 {
		return FailOutOfGas
	}
	if length > 0 {
		data, err := i.memory.GetMutSlice(int64(offset), int64(length), &i.gasLeft)
		if err != nil {
			return err
		}
		i.output = append([]byte(nil), data...)
	}
	i.status = statusRevert
	return nil
}

func opInvalid(i *Interpreter) error {
	return FailInvalidInstruction
}

func opSelfDestruct(i *Interpreter) error {
	if err := i.requireNotStatic(); err != nil {
		return err
	}
	beneficiaryVal, err := i.stack.Pop()
	if err != nil {
		return err
	}
	beneficiary := Address(beneficiaryVal.Bytes32()[12:])

	cost := GasSelfdestruct
	if i.revision >= Berlin && i.host.AccessAccount(beneficiary) == Cold {
		cost += GasBalanceCold
	}
	if !i.host.AccountExists(beneficiary) && !i.host.GetBalance(i.message.Recipient).IsZero() {
		cost += GasCallNewAccount
	}
	if err := i.consumeGas(cost); err != nil {
		return err
	}
	firstTime := i.host.SelfDestruct(i.message.Recipient, beneficiary)
	if firstTime && i.revision < London {
		i.gasRefund += RefundSelfdestructPreLondon
	}
	i.status = statusStopped
	return nil
}
