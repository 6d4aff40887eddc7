package wire

import (
	"math/big"
	"slices"
)

var (
	modulus128     = new(big.Int).Lsh(big.NewInt(1), 128)
	halfModulus128 = new(big.Int).Lsh(big.NewInt(1), 127)
	modulus256     = new(big.Int).Lsh(big.NewInt(1), 256)
	halfModulus256 = new(big.Int).Lsh(big.NewInt(1), 255)
)

func uintN(b []byte, off, n int) (*big.Int, int, bool) {
	if !fits(b, off, n) {
		return nil, off, false
	}
	be := slices.Clone(b[off : off+n])
	slices.Reverse(be)
	return new(big.Int).SetBytes(be), off + n, true
}

func intN(b []byte, off, n int, modulus, half *big.Int) (*big.Int, int, bool) {
	v, next, ok := uintN(b, off, n)
	if !ok {
		return nil, off, false
	}
	if v.Cmp(half) >= 0 {
		v.Sub(v, modulus)
	}
	return v, next, true
}

// Uint128 reads a 16 byte little-endian unsigned integer.
func Uint128(b []byte, off int) (*big.Int, int, bool) { return uintN(b, off, 16) }

// Uint256 reads a 32 byte little-endian unsigned integer.
func Uint256(b []byte, off int) (*big.Int, int, bool) { return uintN(b, off, 32) }

// Int128 reads a 16 byte little-endian signed integer.
func Int128(b []byte, off int) (*big.Int, int, bool) {
	return intN(b, off, 16, modulus128, halfModulus128)
}

// Int256 reads a 32 byte little-endian signed integer.
func Int256(b []byte, off int) (*big.Int, int, bool) {
	return intN(b, off, 32, modulus256, halfModulus256)
}
