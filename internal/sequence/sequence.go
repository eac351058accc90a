// Package sequence implements the linear congruential table that every random
// draw in a game session is read from.
//
// The table is computed once from its parameters and then read cyclically, so
// a session seeded with the same parameters replays the exact same deals,
// thresholds and claimed ranks.
package sequence

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Params are the linear congruential parameters of a table.
type Params struct {
	Seed       int64
	Multiplier int64
	Additive   int64
	Modulus    int64
}

// DefaultParams are the parameters a game room uses unless configured otherwise.
var DefaultParams = Params{
	Seed:       122,
	Multiplier: 223,
	Additive:   881,
	Modulus:    997,
}

// MaxModulus bounds the table length, which is modulus-1 entries.
const MaxModulus = 1 << 20

var (
	ErrInvalidModulus    = errors.New("sequence: modulus must be at least 2")
	ErrModulusTooLarge   = fmt.Errorf("sequence: modulus must be at most %d", MaxModulus)
	ErrOverflow          = errors.New("sequence: x*multiplier+additive overflows int64")
	ErrInvalidMultiplier = errors.New("sequence: multiplier must be positive")
	ErrInvalidAdditive   = errors.New("sequence: additive must not be negative")
	ErrInvalidSeed       = errors.New("sequence: seed must not be negative")
)

// Validate reports whether the parameters can produce a table.
func (p Params) Validate() error {
	switch {
	case p.Modulus < 2:
		return ErrInvalidModulus
	case p.Multiplier < 1:
		return ErrInvalidMultiplier
	case p.Additive < 0:
		return ErrInvalidAdditive
	case p.Seed < 0:
		return ErrInvalidSeed
	case p.Modulus > MaxModulus:
		return ErrModulusTooLarge
	}

	// x is the seed on the first step and a residue below modulus afterwards
	x := max(p.Seed, p.Modulus-1)
	if x > (math.MaxInt64-p.Additive)/p.Multiplier {
		return ErrOverflow
	}
	return nil
}

// Row is one step of the table generation.
type Row struct {
	Product  int64   // x*multiplier + additive
	Residue  int64   // product mod modulus
	Fraction float64 // residue / modulus rounded to 10 decimal places
}

// Generator hands out the table values in order, wrapping at the end.
// It is not safe for concurrent use; a room reads it from its single worker.
type Generator struct {
	params Params
	rows   []Row
	table  []float64
	cursor int
}

// New computes the table for p. The table is never regenerated.
func New(p Params) (*Generator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.Modulus - 1
	g := &Generator{
		params: p,
		rows:   make([]Row, 0, n),
		table:  make([]float64, 0, n),
	}

	x := p.Seed
	for i := int64(0); i < n; i++ {
		a := x*p.Multiplier + p.Additive
		x = a % p.Modulus
		r := round10(float64(x) / float64(p.Modulus))

		g.rows = append(g.rows, Row{Product: a, Residue: x, Fraction: r})
		g.table = append(g.table, r)
	}

	return g, nil
}

// MustDefault returns a generator over DefaultParams.
func MustDefault() *Generator {
	g, err := New(DefaultParams)
	if err != nil {
		panic(fmt.Sprintf("sequence: default params: %v", err))
	}
	return g
}

// Next returns the value under the cursor and advances it by one.
// The result is always in [0, 1).
func (g *Generator) Next() float64 {
	v := g.table[g.cursor]
	g.cursor = (g.cursor + 1) % len(g.table)
	return v
}

// Period is the number of draws after which values repeat.
func (g *Generator) Period() int {
	return len(g.table)
}

// Params returns the parameters the table was built from.
func (g *Generator) Params() Params {
	return g.params
}

// Rows returns a copy of the generation table.
func (g *Generator) Rows() []Row {
	out := make([]Row, len(g.rows))
	copy(out, g.rows)
	return out
}

// round10 rounds to 10 decimal places through the decimal representation,
// matching a fixed-point string round trip rather than float arithmetic.
func round10(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 10, 64), 64)
	return r
}
