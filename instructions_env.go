package evmrs

import (
	"github.com/evmrs/evmrs/crypto"
	"github.com/evmrs/evmrs/u256"
)

func pushWord(i *Interpreter, w u256.Word) error {
	if err := i.stack.Push(w); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

func addressToWord(a Address) u256.Word {
	var b [32]byte
	copy(b[12:], a[:])
	return u256.FromBigEndian32(b)
}

func hashToWord(h Hash) u256.Word {
	return u256.FromBigEndian32([32]byte(h))
}

func opAddress(i *Interpreter) error { return pushWord(i, addressToWord(i.message.Recipient)) }

func opBalance(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	addrWord := loc.Current()
	addr := Address(addrWord.Bytes32()[12:])
	if err := i.chargeAccountAccess(addr); err != nil {
		return err
	}
	loc.Push(i.host.GetBalance(addr))
	i.code.Next()
	return nil
}

// chargeAccountAccess charges the cold/warm account-access gas for
// BALANCE/EXTCODESIZE/EXTCODEHASH/EXTCODECOPY's account-touch component.
func (i *Interpreter) chargeAccountAccess(addr Address) error {
	if i.revision < Berlin {
		return i.consumeGas(GasBalanceColdPreBerlin)
	}
	switch i.host.AccessAccount(addr) {
	case Warm:
		return i.consumeGas(GasBalanceWarm)
	default:
		return i.consumeGas(GasBalanceCold)
	}
}

func opOrigin(i *Interpreter) error    { return pushWord(i, addressToWord(i.host.GetTxContext().Origin)) }
func opCaller(i *Interpreter) error    { return pushWord(i, addressToWord(i.message.Sender)) }
func opCallValue(i *Interpreter) error { return pushWord(i, u256.FromBigEndian32(i.message.Value)) }

func opCallDataLoad(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	offsetWord := loc.Current()
	offset, overflow := offsetWord.Uint64WithOverflow()
	var buf [32]byte
	if !overflow {
		for j := 0; j < 32; j++ {
			idx := offset + uint64(j)
			if idx < uint64(len(i.message.Input)) {
				buf[j] = i.message.Input[idx]
			}
		}
	}
	loc.Push(u256.FromBigEndian32(buf))
	i.code.Next()
	return nil
}

func opCallDataSize(i *Interpreter) error {
	return pushWord(i, u256.FromUint64(uint64(len(i.message.Input))))
}

// copyToMemory charges the "3*ceil(len/32) + growth" part of the
// CALLDATACOPY/CODECOPY/RETURNDATACOPY cost (the base is the jump table's
// constant gas) and copies from src (zero-padded past its end) into memory
// at destOffset. EXTCODECOPY does the same steps inline.
func copyToMemory(i *Interpreter, destOffset, srcOffset, length int64, src []byte) error {
	if length == 0 {
		return nil
	}
	copyCost := GasCopyWord * wordCount256(length)
	if err := i.consumeGas(copyCost); err != nil {
		return err
	}
	dst, err := i.memory.GetMutSlice(destOffset, length, &i.gasLeft)
	if err != nil {
		return err
	}
	for j := int64(0); j < length; j++ {
		srcIdx := srcOffset + j
		if srcIdx >= 0 && srcIdx < int64(len(src)) {
			dst[j] = src[srcIdx]
		} else {
			dst[j] = 0
		}
	}
	return nil
}

func popOffsetLen(i *Interpreter, n int) ([]u256.Word, error) {
	return i.stack.PopN(n)
}

func opCallDataCopy(i *Interpreter) error {
	vals, err := popOffsetLen(i, 3)
	if err != nil {
		return err
	}
	destOffset, overflow1 := vals[0].Uint64WithOverflow()
	srcOffset, overflow2 := vals[1].Uint64WithOverflow()
	length, overflow3 := vals[2].Uint64WithOverflow()
	if overflow1 || overflow3 {
		return FailOutOfGas
	}
	srcOff := int64(srcOffset)
	if overflow2 {
		srcOff = int64(len(i.message.Input)) // beyond range, reads as zero
	}
	if err := copyToMemory(i, int64(destOffset), srcOff, int64(length), i.message.Input); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

func opCodeSize(i *Interpreter) error {
	return pushWord(i, u256.FromUint64(uint64(i.code.CodeLen())))
}

func opCodeCopy(i *Interpreter) error {
	vals, err := popOffsetLen(i, 3)
	if err != nil {
		return err
	}
	destOffset, overflow1 := vals[0].Uint64WithOverflow()
	srcOffset, overflow2 := vals[1].Uint64WithOverflow()
	length, overflow3 := vals[2].Uint64WithOverflow()
	if overflow1 || overflow3 {
		return FailOutOfGas
	}
	srcOff := int64(srcOffset)
	if overflow2 {
		srcOff = int64(i.code.CodeLen())
	}
	if err := copyToMemory(i, int64(destOffset), srcOff, int64(length), i.code.code); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

func opGasPrice(i *Interpreter) error { return pushWord(i, i.host.GetTxContext().GasPrice) }

func opExtCodeSize(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	addr := Address(loc.Current().Bytes32()[12:])
	if err := i.chargeAccountAccess(addr); err != nil {
		return err
	}
	loc.Push(u256.FromUint64(uint64(i.host.GetCodeSize(addr))))
	i.code.Next()
	return nil
}

func opExtCodeCopy(i *Interpreter) error {
	addrVal, err := i.stack.Pop()
	if err != nil {
		return err
	}
	addr := Address(addrVal.Bytes32()[12:])
	if err := i.chargeAccountAccess(addr); err != nil {
		return err
	}
	vals, err := popOffsetLen(i, 3)
	if err != nil {
		return err
	}
	destOffset, overflow1 := vals[0].Uint64WithOverflow()
	srcOffset, overflow2 := vals[1].Uint64WithOverflow()
	length, overflow3 := vals[2].Uint64WithOverflow()
	if overflow1 || overflow3 {
		return FailOutOfGas
	}
	if length == 0 {
		i.code.Next()
		return nil
	}
	copyCost := GasCopyWord * wordCount256(int64(length))
	if err := i.consumeGas(copyCost); err != nil {
		return err
	}
	dst, err := i.memory.GetMutSlice(int64(destOffset), int64(length), &i.gasLeft)
	if err != nil {
		return err
	}
	if overflow2 {
		srcOffset = uint64(i.host.GetCodeSize(addr))
	}
	n := i.host.CopyCode(addr, int(srcOffset), dst)
	for j := n; j < len(dst); j++ {
		dst[j] = 0
	}
	i.code.Next()
	return nil
}

func opReturnDataSize(i *Interpreter) error {
	return pushWord(i, u256.FromUint64(uint64(len(i.lastCallReturnData))))
}

func opReturnDataCopy(i *Interpreter) error {
	vals, err := popOffsetLen(i, 3)
	if err != nil {
		return err
	}
	destOffset, overflow1 := vals[0].Uint64WithOverflow()
	srcOffset, overflow2 := vals[1].Uint64WithOverflow()
	length, overflow3 := vals[2].Uint64WithOverflow()
	if overflow1 || overflow2 || overflow3 {
		return FailInvalidMemoryAccess
	}
	end := srcOffset + length
	if end < srcOffset || end > uint64(len(i.lastCallReturnData)) {
		return FailInvalidMemoryAccess
	}
	if err := copyToMemory(i, int64(destOffset), int64(srcOffset), int64(length), i.lastCallReturnData); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

func opExtCodeHash(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	addr := Address(loc.Current().Bytes32()[12:])
	if err := i.chargeAccountAccess(addr); err != nil {
		return err
	}
	if !i.host.AccountExists(addr) {
		loc.Push(u256.Zero)
	} else {
		loc.Push(hashToWord(i.host.GetCodeHash(addr)))
	}
	i.code.Next()
	return nil
}

func opBlockHash(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	num, overflow := loc.Current().Uint64WithOverflow()
	if overflow {
		loc.Push(u256.Zero)
	} else {
		loc.Push(hashToWord(i.host.GetBlockHash(int64(num))))
	}
	i.code.Next()
	return nil
}

func opCoinbase(i *Interpreter) error   { return pushWord(i, addressToWord(i.host.GetTxContext().Coinbase)) }
func opTimestamp(i *Interpreter) error  { return pushWord(i, u256.FromUint64(uint64(i.host.GetTxContext().Timestamp))) }
func opNumber(i *Interpreter) error     { return pushWord(i, u256.FromUint64(uint64(i.host.GetTxContext().BlockNumber))) }
func opPrevRandao(i *Interpreter) error { return pushWord(i, i.host.GetTxContext().PrevRandao) }
func opGasLimit(i *Interpreter) error   { return pushWord(i, u256.FromUint64(uint64(i.host.GetTxContext().GasLimit))) }
func opChainID(i *Interpreter) error    { return pushWord(i, i.host.GetTxContext().ChainID) }
func opSelfBalance(i *Interpreter) error {
	return pushWord(i, i.host.GetBalance(i.message.Recipient))
}
func opBaseFee(i *Interpreter) error     { return pushWord(i, i.host.GetTxContext().BaseFee) }
func opBlobHash(i *Interpreter) error {
	// Blob-carrying transactions are out of this core's scope; there are no
	// versioned hashes to index, so BLOBHASH always yields zero.
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	loc.Push(u256.Zero)
	i.code.Next()
	return nil
}
func opBlobBaseFee(i *Interpreter) error { return pushWord(i, i.host.GetTxContext().BlobBaseFee) }

func opKeccak256(i *Interpreter) error {
	vals, err := popOffsetLen(i, 2)
	if err != nil {
		return err
	}
	offset, overflow1 := vals[0].Uint64WithOverflow()
	length, overflow2 := vals[1].Uint64WithOverflow()
	if overflow1 || overflow2 {
		return FailOutOfGas
	}
	cost := GasKeccak256 + GasKeccak256Word*wordCount256(int64(length))
	if err := i.consumeGas(cost); err != nil {
		return err
	}
	data, err := i.memory.GetMutSlice(int64(offset), int64(length), &i.gasLeft)
	if err != nil {
		return err
	}
	digest := i.hashData(data)
	if err := i.stack.Push(u256.FromBigEndian32(digest)); err != nil {
		return err
	}
	i.code.Next()
	return nil
}

// hashData consults the shared hash cache for 32- or 64-byte inputs only,
// always computing fresh for any other length.
func (i *Interpreter) hashData(data []byte) [32]byte {
	switch len(data) {
	case 32:
		var key [32]byte
		copy(key[:], data)
		if d, ok := sharedHashCache.Get32(key); ok {
			return d
		}
		d := crypto.Keccak256Array(data)
		sharedHashCache.Put32(key, d)
		return d
	case 64:
		var key [64]byte
		copy(key[:], data)
		if d, ok := sharedHashCache.Get64(key); ok {
			return d
		}
		d := crypto.Keccak256Array(data)
		sharedHashCache.Put64(key, d)
		return d
	default:
		return crypto.Keccak256Array(data)
	}
}
