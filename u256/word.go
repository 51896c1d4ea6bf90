// Package u256 implements the 256-bit unsigned integer arithmetic the
// interpreter operates on: wrapping addition/subtraction/multiplication,
// zero-on-divide-by-zero division and remainder, two's-complement signed
// variants, and the handful of EVM-specific operations (SIGNEXTEND, BYTE,
// SAR) that don't map onto a generic big-integer library directly.
package u256

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Word is a 256-bit unsigned integer with wraparound arithmetic, matching
// the EVM's native stack/memory word.
type Word struct {
	u uint256.Int
}

var (
	Zero = Word{}
	One  = FromUint64(1)
	Max  = Word{u: *new(uint256.Int).SetAllOne()}
)

// tt256, tt255 are 2^256 and 2^255, used to translate between the wrapping
// unsigned representation and a signed two's-complement one via math/big.
var (
	tt256  = new(big.Int).Lsh(big.NewInt(1), 256)
	tt255  = new(big.Int).Lsh(big.NewInt(1), 255)
	bigOne = big.NewInt(1)
)

func FromUint64(v uint64) Word {
	var w Word
	w.u.SetUint64(v)
	return w
}

func FromBytes(b []byte) Word {
	var w Word
	w.u.SetBytes(b)
	return w
}

// FromBigEndian32 reads a 32-byte big-endian buffer, as code reading and
// push-data construction does.
func FromBigEndian32(b [32]byte) Word {
	var w Word
	w.u.SetBytes32(b[:])
	return w
}

func (w Word) Bytes32() [32]byte {
	return w.u.Bytes32()
}

func (w Word) Big() *big.Int {
	return w.u.ToBig()
}

func FromBig(b *big.Int) Word {
	var w Word
	bb := new(big.Int).Mod(b, tt256)
	if bb.Sign() < 0 {
		bb.Add(bb, tt256)
	}
	w.u.SetFromBig(bb)
	return w
}

func (w Word) IsZero() bool { return w.u.IsZero() }
func (w Word) Eq(o Word) bool { return w.u.Eq(&o.u) }
func (w Word) Lt(o Word) bool { return w.u.Lt(&o.u) }
func (w Word) Gt(o Word) bool { return w.u.Gt(&o.u) }

func (w Word) Add(o Word) Word {
	var r Word
	r.u.Add(&w.u, &o.u)
	return r
}

func (w Word) Sub(o Word) Word {
	var r Word
	r.u.Sub(&w.u, &o.u)
	return r
}

func (w Word) Mul(o Word) Word {
	var r Word
	r.u.Mul(&w.u, &o.u)
	return r
}

// Div is unsigned division; division by zero yields zero per the EVM spec.
func (w Word) Div(o Word) Word {
	if o.IsZero() {
		return Zero
	}
	var r Word
	r.u.Div(&w.u, &o.u)
	return r
}

// Mod is unsigned remainder; modulo zero yields zero.
func (w Word) Mod(o Word) Word {
	if o.IsZero() {
		return Zero
	}
	var r Word
	r.u.Mod(&w.u, &o.u)
	return r
}

// toSigned reinterprets w's bit pattern as a two's-complement signed value.
func (w Word) toSigned() *big.Int {
	b := w.Big()
	if b.Cmp(tt255) >= 0 {
		b.Sub(b, tt256)
	}
	return b
}

// SDiv is signed division in two's-complement; division by zero and the
// MinInt256/-1 overflow case both yield deterministic EVM results.
func (w Word) SDiv(o Word) Word {
	if o.IsZero() {
		return Zero
	}
	x, y := w.toSigned(), o.toSigned()
	q := new(big.Int).Quo(x, y)
	return FromBig(q)
}

// SMod is signed remainder (sign follows the dividend), zero on mod-by-zero.
func (w Word) SMod(o Word) Word {
	if o.IsZero() {
		return Zero
	}
	x, y := w.toSigned(), o.toSigned()
	r := new(big.Int).Rem(x, y)
	return FromBig(r)
}

// AddMod computes (w+o) mod m with at least 512-bit intermediate precision.
func (w Word) AddMod(o, m Word) Word {
	if m.IsZero() {
		return Zero
	}
	sum := new(big.Int).Add(w.Big(), o.Big())
	sum.Mod(sum, m.Big())
	return FromBig(sum)
}

// MulMod computes (w*o) mod m with at least 512-bit intermediate precision.
func (w Word) MulMod(o, m Word) Word {
	if m.IsZero() {
		return Zero
	}
	prod := new(big.Int).Mul(w.Big(), o.Big())
	prod.Mod(prod, m.Big())
	return FromBig(prod)
}

// Pow is modular exponentiation via square-and-multiply, wrapping mod 2^256.
func (w Word) Pow(exp Word) Word {
	base := new(big.Int).Set(w.Big())
	e := new(big.Int).Set(exp.Big())
	acc := big.NewInt(1)
	two := big.NewInt(2)
	for e.Cmp(bigOne) > 0 {
		if e.Bit(0) == 1 {
			acc.Mul(acc, base)
			acc.Mod(acc, tt256)
		}
		e.Div(e, two)
		base.Mul(base, base)
		base.Mod(base, tt256)
	}
	if e.Cmp(bigOne) == 0 {
		acc.Mul(acc, base)
		acc.Mod(acc, tt256)
	}
	return FromBig(acc)
}

// SignExtend sign-extends value treating it as a size-byte signed integer
// (size indexes from the least-significant byte, 0-based). size >= 31
// returns value unchanged.
func SignExtend(size, value Word) Word {
	sizeU64, overflow := size.Uint64WithOverflow()
	if overflow || sizeU64 > 31 {
		return value
	}
	byteIdx := int(sizeU64)
	bytes := value.Bytes32() // big-endian
	signByte := bytes[31-byteIdx]
	negative := signByte&0x80 != 0
	result := bytes
	if negative {
		for i := 0; i < 31-byteIdx; i++ {
			result[i] = 0xff
		}
	} else {
		for i := 0; i < 31-byteIdx; i++ {
			result[i] = 0
		}
	}
	return FromBigEndian32(result)
}

// SLT is signed less-than.
func (w Word) SLT(o Word) bool {
	return w.toSigned().Cmp(o.toSigned()) < 0
}

// SGT is signed greater-than.
func (w Word) SGT(o Word) bool {
	return w.toSigned().Cmp(o.toSigned()) > 0
}

// And, Or, Xor, Not are bitwise ops over the full 256-bit word.
func (w Word) And(o Word) Word {
	var r Word
	r.u.And(&w.u, &o.u)
	return r
}

func (w Word) Or(o Word) Word {
	var r Word
	r.u.Or(&w.u, &o.u)
	return r
}

func (w Word) Xor(o Word) Word {
	var r Word
	r.u.Xor(&w.u, &o.u)
	return r
}

func (w Word) Not() Word {
	var r Word
	r.u.Not(&w.u)
	return r
}

// Byte returns the index-th byte counting from the most significant byte
// (index 0). index >= 32 returns zero.
func (w Word) Byte(index Word) Word {
	idxU64, overflow := index.Uint64WithOverflow()
	if overflow || idxU64 >= 32 {
		return Zero
	}
	b := w.Bytes32()
	return FromUint64(uint64(b[idxU64]))
}

// Shl is a logical left shift; shift amounts >= 256 yield zero.
func (w Word) Shl(shift Word) Word {
	shiftU64, overflow := shift.Uint64WithOverflow()
	if overflow || shiftU64 >= 256 {
		return Zero
	}
	var r Word
	r.u.Lsh(&w.u, uint(shiftU64))
	return r
}

// Shr is a logical right shift; shift amounts >= 256 yield zero.
func (w Word) Shr(shift Word) Word {
	shiftU64, overflow := shift.Uint64WithOverflow()
	if overflow || shiftU64 >= 256 {
		return Zero
	}
	var r Word
	r.u.Rsh(&w.u, uint(shiftU64))
	return r
}

// Sar is an arithmetic (sign-extending) right shift. Shift amounts >= 256
// yield all-ones for a negative value, zero otherwise.
func (w Word) Sar(shift Word) Word {
	negative := w.toSigned().Sign() < 0
	shiftU64, overflow := shift.Uint64WithOverflow()
	if overflow || shiftU64 >= 256 {
		if negative {
			return Max
		}
		return Zero
	}
	var r Word
	r.u.Rsh(&w.u, uint(shiftU64))
	if negative {
		mask := new(big.Int).Lsh(big.NewInt(1), uint(256-shiftU64))
		mask.Sub(mask, bigOne)
		mask.Sub(tt256Minus1, mask)
		orred := new(big.Int).Or(r.Big(), mask)
		return FromBig(orred)
	}
	return r
}

var tt256Minus1 = new(big.Int).Sub(tt256, bigOne)

// Uint64WithOverflow returns the low 64 bits and whether any higher bits
// were set (i.e. the value does not fit into a uint64).
func (w Word) Uint64WithOverflow() (uint64, bool) {
	if !w.u.IsUint64() {
		return w.u.Uint64(), true
	}
	return w.u.Uint64(), false
}

// Uint64Saturating returns the value capped at math.MaxUint64 if it doesn't fit.
func (w Word) Uint64Saturating() uint64 {
	v, overflow := w.Uint64WithOverflow()
	if overflow {
		return ^uint64(0)
	}
	return v
}

// Bits returns the minimal number of bits needed to represent w (0 for zero).
func (w Word) Bits() uint {
	return uint(w.u.BitLen())
}

// LeastSignificantByte returns the low 8 bits of w, used by MSTORE8.
func (w Word) LeastSignificantByte() byte {
	return byte(w.u.Uint64())
}

func (w Word) String() string {
	return w.u.Dec()
}
