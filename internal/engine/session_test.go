package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/metafeatgo/internal/registry"
)

func newTestRegistry(t *testing.T, manifest string, handlers map[string]registry.ComputeFunc) *registry.Registry {
	t.Helper()
	r := registry.New()
	for id, fn := range handlers {
		r.RegisterFunction(id, fn)
	}
	require.NoError(t, r.Load(context.Background(), "test.hcl", []byte(manifest)))
	return r
}

func TestSeeds(t *testing.T) {
	s := Seeds{Base: 100}
	assert.Equal(t, int64(100), s.For(0))
	assert.Equal(t, int64(107), s.For(7))
}

func TestRandomBase(t *testing.T) {
	seed := RandomBase()
	assert.GreaterOrEqual(t, seed, int64(0))
}

func TestValue(t *testing.T) {
	computed := Computed(3.5)
	assert.False(t, computed.IsUncomputable())
	assert.Equal(t, 3.5, computed.Raw())
	assert.False(t, computed.missing())

	uncomputable := Uncomputable("no such luck")
	assert.True(t, uncomputable.IsUncomputable())
	assert.Equal(t, "no such luck", uncomputable.Reason())
	assert.True(t, uncomputable.missing())

	nan := Computed(math.NaN())
	assert.False(t, nan.IsUncomputable())
	assert.True(t, nan.missing())
}

func TestResolveMemoizes(t *testing.T) {
	manifest := `
input "A" {}

function "double" {
  params  = ["A"]
  returns = ["Doubled"]
}

resource "Doubled" {
  function = "double"
}
`
	calls := 0
	reg := newTestRegistry(t, manifest, map[string]registry.ComputeFunc{
		"double": func(_ context.Context, call registry.Call) ([]any, error) {
			calls++
			return []any{call.Args[0].(float64) * 2}, nil
		},
	})

	s := NewSession(reg, 1)
	s.Seed("A", 21.0)

	v, seconds, err := s.Resolve(context.Background(), "Doubled")
	require.NoError(t, err)
	assert.Equal(t, 42.0, v.Raw())
	assert.False(t, math.IsNaN(seconds))

	v2, _, err := s.Resolve(context.Background(), "Doubled")
	require.NoError(t, err)
	assert.Equal(t, 42.0, v2.Raw())
	assert.Equal(t, 1, calls)
}

func TestResolveSharedOutputs(t *testing.T) {
	manifest := `
input "A" {}

function "split" {
  params  = ["A"]
  returns = ["Left", "Right"]
}

resource "Left" {
  function = "split"
}

resource "Right" {
  function = "split"
}
`
	calls := 0
	reg := newTestRegistry(t, manifest, map[string]registry.ComputeFunc{
		"split": func(_ context.Context, call registry.Call) ([]any, error) {
			calls++
			v := call.Args[0].(float64)
			return []any{v - 1, v + 1}, nil
		},
	})

	s := NewSession(reg, 1)
	s.Seed("A", 10.0)

	left, leftSeconds, err := s.Resolve(context.Background(), "Left")
	require.NoError(t, err)
	right, rightSeconds, err := s.Resolve(context.Background(), "Right")
	require.NoError(t, err)

	assert.Equal(t, 9.0, left.Raw())
	assert.Equal(t, 11.0, right.Raw())
	assert.Equal(t, 1, calls, "one call serves both outputs")
	assert.Equal(t, leftSeconds, rightSeconds, "outputs of one call share its cost")
}

func TestResolveLiteralParams(t *testing.T) {
	manifest := `
input "A" {}

function "add" {
  params  = ["A", 5]
  returns = ["Sum"]
}

resource "Sum" {
  function = "add"
}
`
	reg := newTestRegistry(t, manifest, map[string]registry.ComputeFunc{
		"add": func(_ context.Context, call registry.Call) ([]any, error) {
			return []any{call.Args[0].(float64) + call.Args[1].(float64)}, nil
		},
	})

	s := NewSession(reg, 1)
	s.Seed("A", 37.0)

	v, _, err := s.Resolve(context.Background(), "Sum")
	require.NoError(t, err)
	assert.Equal(t, 42.0, v.Raw())
}

func TestResolveSeedDerivation(t *testing.T) {
	manifest := `
input "A" {}

function "sample" {
  params      = ["A"]
  returns     = ["Sampled"]
  seed_offset = 7
}

resource "Sampled" {
  function = "sample"
}

resource "Resampled" {
  function = "sample"
  returns  = ["Resampled"]
  seed_offset = 9
}
`
	var seeds []int64
	reg := newTestRegistry(t, manifest, map[string]registry.ComputeFunc{
		"sample": func(_ context.Context, call registry.Call) ([]any, error) {
			seeds = append(seeds, call.Seed)
			return []any{call.Args[0]}, nil
		},
	})

	s := NewSession(reg, 100)
	s.Seed("A", 1.0)

	_, _, err := s.Resolve(context.Background(), "Sampled")
	require.NoError(t, err)
	_, _, err = s.Resolve(context.Background(), "Resampled")
	require.NoError(t, err)

	assert.Equal(t, []int64{107, 109}, seeds)
}

func TestResolvePropagatesUncomputable(t *testing.T) {
	manifest := `
input "A" {}

function "fragile" {
  params  = ["A"]
  returns = ["Fragile"]
}

function "dependent" {
  params  = ["Fragile"]
  returns = ["Dependent"]
}

resource "Fragile" {
  function = "fragile"
}

resource "Dependent" {
  function = "dependent"
}
`
	dependentCalls := 0
	reg := newTestRegistry(t, manifest, map[string]registry.ComputeFunc{
		"fragile": func(_ context.Context, _ registry.Call) ([]any, error) {
			return []any{math.NaN()}, nil
		},
		"dependent": func(_ context.Context, _ registry.Call) ([]any, error) {
			dependentCalls++
			return []any{1.0}, nil
		},
	})

	s := NewSession(reg, 1)
	s.Seed("A", 1.0)

	v, seconds, err := s.Resolve(context.Background(), "Dependent")
	require.NoError(t, err)
	assert.True(t, v.IsUncomputable())
	assert.Contains(t, v.Reason(), "Fragile")
	assert.True(t, math.IsNaN(seconds))
	assert.Equal(t, 0, dependentCalls, "producing function must not run on a missing dependency")
}

func TestResolveFatalErrors(t *testing.T) {
	t.Run("unknown resource", func(t *testing.T) {
		reg := newTestRegistry(t, `input "A" {}`, nil)
		s := NewSession(reg, 1)

		_, _, err := s.Resolve(context.Background(), "dne")
		assert.ErrorContains(t, err, "unknown resource 'dne'")
	})

	t.Run("producing function error aborts", func(t *testing.T) {
		manifest := `
input "A" {}

function "boom" {
  params  = ["A"]
  returns = ["Boom"]
}

resource "Boom" {
  function = "boom"
}
`
		reg := newTestRegistry(t, manifest, map[string]registry.ComputeFunc{
			"boom": func(_ context.Context, _ registry.Call) ([]any, error) {
				return nil, errors.New("kaput")
			},
		})
		s := NewSession(reg, 1)
		s.Seed("A", 1.0)

		_, _, err := s.Resolve(context.Background(), "Boom")
		assert.ErrorContains(t, err, "computing resource 'Boom'")
		assert.ErrorContains(t, err, "kaput")
	})

	t.Run("arity mismatch aborts", func(t *testing.T) {
		manifest := `
input "A" {}

function "pair" {
  params  = ["A"]
  returns = ["Left", "Right"]
}

resource "Left" {
  function = "pair"
}

resource "Right" {
  function = "pair"
}
`
		reg := newTestRegistry(t, manifest, map[string]registry.ComputeFunc{
			"pair": func(_ context.Context, _ registry.Call) ([]any, error) {
				return []any{1.0}, nil
			},
		})
		s := NewSession(reg, 1)
		s.Seed("A", 1.0)

		_, _, err := s.Resolve(context.Background(), "Left")
		assert.ErrorContains(t, err, "returned 1 values")
	})
}

func TestSeededInputsCostNothing(t *testing.T) {
	reg := newTestRegistry(t, `input "A" {}`, nil)
	s := NewSession(reg, 1)
	s.Seed("A", 3.0)

	v, seconds, err := s.Resolve(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.Raw())
	assert.Zero(t, seconds)
}
