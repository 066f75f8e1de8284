// Package bitslow computes the deterministic coin fingerprint and samples
// coin components. The fingerprint loop is deliberately expensive; it is the
// proof-of-work cost of minting and must not be shortcut in production.
package bitslow

import (
	"context"
	"crypto/md5" //nolint:gosec // fingerprint, not a security hash
	"encoding/hex"
	"fmt"
	"math/big"
	"math/rand/v2"
)

// DefaultIterations is the production mixing-loop length.
const DefaultIterations = 1_000_000

// Compute derives the fingerprint of a component triple using the default
// iteration count.
func Compute(b1, b2, b3 int) string {
	return ComputeN(b1, b2, b3, DefaultIterations)
}

// ComputeN runs the mixing loop for a caller-chosen iteration count.
// Each iteration adds (b1 mod 1000) + (b1 div 100) to an arbitrary-precision
// accumulator; odd iterations additionally add b3 cubed, even iterations add
// b2 squared. Division and remainder truncate toward zero. The result is the
// lowercase hex MD5 of the accumulator's decimal representation.
//
// The function is pure: same inputs, same output, and it is sensitive to the
// order of the triple.
func ComputeN(b1, b2, b3, iterations int) string {
	big1 := big.NewInt(int64(b1))
	big2 := big.NewInt(int64(b2))
	big3 := big.NewInt(int64(b3))

	// Per-iteration increments are loop invariants.
	step := new(big.Int).Rem(big1, big.NewInt(1000))
	step.Add(step, new(big.Int).Quo(big1, big.NewInt(100)))
	square := new(big.Int).Mul(big2, big2)
	cube := new(big.Int).Mul(big3, big3)
	cube.Mul(cube, big3)

	n := new(big.Int)
	for i := 0; i < iterations; i++ {
		n.Add(n, step)
		if i%2 == 1 {
			n.Add(n, cube)
		} else {
			n.Add(n, square)
		}
	}

	sum := md5.Sum([]byte(n.Text(10))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Engine gates fingerprint computation behind a fixed number of worker
// slots so a burst of mints cannot monopolize the process.
type Engine struct {
	iterations int
	slots      chan struct{}
}

// NewEngine returns an Engine running the mixing loop for iterations rounds
// with at most workers concurrent computations. Zero or negative arguments
// fall back to DefaultIterations and a single worker.
func NewEngine(iterations, workers int) *Engine {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		iterations: iterations,
		slots:      make(chan struct{}, workers),
	}
}

// Compute waits for a worker slot, then derives the fingerprint of the
// triple. It returns the context error if ctx is done before a slot frees up.
func (e *Engine) Compute(ctx context.Context, b1, b2, b3 int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case e.slots <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-e.slots }()

	return ComputeN(b1, b2, b3, e.iterations), nil
}

// DistinctRandomValues returns count pairwise-distinct uniform values from
// the inclusive range [min, max].
func DistinctRandomValues(count, min, max int) ([]int, error) {
	size := max - min + 1
	if size < count {
		return nil, fmt.Errorf("range [%d,%d] too small for %d distinct values", min, max, count)
	}

	picked := make(map[int]struct{}, count)
	values := make([]int, 0, count)
	for len(values) < count {
		v := min + rand.IntN(size)
		if _, dup := picked[v]; dup {
			continue
		}
		picked[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// RandomValue returns a uniform value from the inclusive range [min, max].
func RandomValue(min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rand.Int64N(max-min+1)
}
