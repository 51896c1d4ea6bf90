package evmrs

// makeLog returns the executor for LOGn. PopN already returns topics in
// top-of-stack-first order, which is topic index order (topic 0 is the word
// just below offset and length), so no further reordering is needed before
// handing them to the host.
func makeLog(n int) func(*Interpreter) error {
	return func(i *Interpreter) error {
		if err := i.requireNotStatic(); err != nil {
			return err
		}
		offLen, err := i.stack.PopN(2)
		if err != nil {
			return err
		}
		offset, overflow1 := offLen[0].Uint64WithOverflow()
		length, overflow2 := offLen[1].Uint64WithOverflow()
		if overflow1 || overflow2 {
			return FailOutOfGas
		}
		topicsPopped, err := i.stack.PopN(n)
		if err != nil {
			return err
		}
		cost := GasLogBase + GasLogTopic*int64(n) + GasLogData*int64(length)
		if err := i.consumeGas(cost); err != nil {
			return err
		}
		var data []byte
		if length > 0 {
			data, err = i.memory.GetMutSlice(int64(offset), int64(length), &i.gasLeft)
			if err != nil {
				return err
			}
		}
		topics := make([]Hash, n)
		for idx := 0; idx < n; idx++ {
			topics[idx] = Hash(topicsPopped[idx].Bytes32())
		}
		i.host.EmitLog(Log{
			Address: i.message.Recipient,
			Topics:  topics,
			Data:    append([]byte(nil), data...),
		})
		i.code.Next()
		return nil
	}
}
