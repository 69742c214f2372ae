// Package field implements arithmetic over prime fields GF(q) together with
// the dense matrix operations the sampler needs: multiplication, transpose,
// and null-space computation via Gaussian elimination.
//
// Elements are represented as uint64 values in [0, q). All operations reduce
// modulo q; inputs outside the range are the caller's bug, not checked here.
package field

import "fmt"

// Field is a prime field of order Q. Construct with New, which rejects
// non-prime orders.
type Field struct {
	q uint64
}

// New returns the prime field of the given order.
func New(order uint64) (*Field, error) {
	if order < 2 {
		return nil, fmt.Errorf("field: order must be >= 2, got %d", order)
	}
	if !isPrime(order) {
		return nil, fmt.Errorf("field: order must be prime, got %d", order)
	}
	return &Field{q: order}, nil
}

// Order returns the number of elements in the field.
func (f *Field) Order() uint64 {
	return f.q
}

// Add returns a + b mod q.
func (f *Field) Add(a, b uint64) uint64 {
	return (a + b) % f.q
}

// Sub returns a - b mod q.
func (f *Field) Sub(a, b uint64) uint64 {
	return (a + f.q - b%f.q) % f.q
}

// Neg returns the additive inverse of a.
func (f *Field) Neg(a uint64) uint64 {
	return (f.q - a%f.q) % f.q
}

// Mul returns a * b mod q.
func (f *Field) Mul(a, b uint64) uint64 {
	return (a * b) % f.q
}

// Exp returns a^n mod q by square-and-multiply.
func (f *Field) Exp(a uint64, n uint64) uint64 {
	result := uint64(1 % f.q)
	base := a % f.q
	for n > 0 {
		if n&1 == 1 {
			result = f.Mul(result, base)
		}
		base = f.Mul(base, base)
		n >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse of a. Panics if a is zero, matching
// the division-by-zero convention of the underlying arithmetic.
func (f *Field) Inv(a uint64) uint64 {
	if a%f.q == 0 {
		panic("field: inverse of zero")
	}
	// Fermat: a^(q-2) for prime q.
	return f.Exp(a, f.q-2)
}

// Reduce maps a signed integer into [0, q).
func (f *Field) Reduce(a int64) uint64 {
	m := a % int64(f.q)
	if m < 0 {
		m += int64(f.q)
	}
	return uint64(m)
}

// VecAdd returns the component-wise sum of a and b. Panics on length
// mismatch.
func (f *Field) VecAdd(a, b []uint64) []uint64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("field: vector length mismatch: %d vs %d", len(a), len(b)))
	}
	out := make([]uint64, len(a))
	for i := range a {
		out[i] = f.Add(a[i], b[i])
	}
	return out
}

// VecScale returns c * v component-wise.
func (f *Field) VecScale(c uint64, v []uint64) []uint64 {
	out := make([]uint64, len(v))
	for i := range v {
		out[i] = f.Mul(c, v[i])
	}
	return out
}

func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
