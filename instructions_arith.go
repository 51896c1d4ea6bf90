package evmrs

import "github.com/evmrs/evmrs/u256"

// binOp pops 2 (a = top, b = second-from-top), applies f(a, b), and writes
// the result to the reused top slot via the fused PopWithLocation
// primitive: only 1 value is physically popped, the second operand is read
// from the write-handle slot before being overwritten.
func binOp(i *Interpreter, f func(a, b u256.Word) u256.Word) error {
	loc, popped, err := i.stack.PopWithLocation(2)
	if err != nil {
		return err
	}
	result := f(popped[0], loc.Current())
	loc.Push(result)
	i.code.Next()
	return nil
}

// triOp pops 3 (a = top, b = second, c = third), applies f(a, b, c), and
// writes the result to the reused slot; only 2 values are physically
// popped, the third is read from the write-handle slot.
func triOp(i *Interpreter, f func(a, b, c u256.Word) u256.Word) error {
	loc, popped, err := i.stack.PopWithLocation(3)
	if err != nil {
		return err
	}
	result := f(popped[0], popped[1], loc.Current())
	loc.Push(result)
	i.code.Next()
	return nil
}

func opAdd(i *Interpreter) error { return binOp(i, u256.Word.Add) }
func opSub(i *Interpreter) error { return binOp(i, u256.Word.Sub) }
func opMul(i *Interpreter) error { return binOp(i, u256.Word.Mul) }
func opDiv(i *Interpreter) error { return binOp(i, u256.Word.Div) }
func opSDiv(i *Interpreter) error { return binOp(i, u256.Word.SDiv) }
func opMod(i *Interpreter) error { return binOp(i, u256.Word.Mod) }
func opSMod(i *Interpreter) error { return binOp(i, u256.Word.SMod) }

func opAddMod(i *Interpreter) error { return triOp(i, u256.Word.AddMod) }
func opMulMod(i *Interpreter) error { return triOp(i, u256.Word.MulMod) }

func opExp(i *Interpreter) error {
	loc, popped, err := i.stack.PopWithLocation(2)
	if err != nil {
		return err
	}
	base, exp := popped[0], loc.Current()
	// 10 + 50 * byte-length of the exponent (ceil(log256(exp+1))).
	byteLen := int64((exp.Bits() + 7) / 8)
	cost := GasHigh + 50*byteLen
	if err := i.consumeGas(cost); err != nil {
		return err
	}
	loc.Push(base.Pow(exp))
	i.code.Next()
	return nil
}

func opSignExtend(i *Interpreter) error {
	return binOp(i, func(size, value u256.Word) u256.Word {
		return u256.SignExtend(size, value)
	})
}

func opLt(i *Interpreter) error {
	return binOp(i, func(a, b u256.Word) u256.Word {
		if a.Lt(b) {
			return u256.One
		}
		return u256.Zero
	})
}

func opGt(i *Interpreter) error {
	return binOp(i, func(a, b u256.Word) u256.Word {
		if a.Gt(b) {
			return u256.One
		}
		return u256.Zero
	})
}

func opSlt(i *Interpreter) error {
	return binOp(i, func(a, b u256.Word) u256.Word {
		if a.SLT(b) {
			return u256.One
		}
		return u256.Zero
	})
}

func opSgt(i *Interpreter) error {
	return binOp(i, func(a, b u256.Word) u256.Word {
		if a.SGT(b) {
			return u256.One
		}
		return u256.Zero
	})
}

func opEq(i *Interpreter) error {
	return binOp(i, func(a, b u256.Word) u256.Word {
		if a.Eq(b) {
			return u256.One
		}
		return u256.Zero
	})
}

func opIsZero(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	if loc.Current().IsZero() {
		loc.Push(u256.One)
	} else {
		loc.Push(u256.Zero)
	}
	i.code.Next()
	return nil
}

func opAnd(i *Interpreter) error { return binOp(i, u256.Word.And) }
func opOr(i *Interpreter) error  { return binOp(i, u256.Word.Or) }
func opXor(i *Interpreter) error { return binOp(i, u256.Word.Xor) }

func opNot(i *Interpreter) error {
	loc, _, err := i.stack.PopWithLocation(1)
	if err != nil {
		return err
	}
	loc.Push(loc.Current().Not())
	i.code.Next()
	return nil
}

func opByte(i *Interpreter) error {
	return binOp(i, func(index, value u256.Word) u256.Word {
		return value.Byte(index)
	})
}

func opShl(i *Interpreter) error {
	return binOp(i, func(shift, value u256.Word) u256.Word { return value.Shl(shift) })
}

func opShr(i *Interpreter) error {
	return binOp(i, func(shift, value u256.Word) u256.Word { return value.Shr(shift) })
}

func opSar(i *Interpreter) error {
	return binOp(i, func(shift, value u256.Word) u256.Word { return value.Sar(shift) })
}
