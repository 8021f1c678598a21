package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTargetDependent(t *testing.T) {
	manifest := `
input "X" {}
input "Y" {}

function "sample" {
  params  = ["X", "Y"]
  returns = ["XSample", "YSample"]
}

function "count" {
  params  = ["XSample"]
  returns = ["RowCount"]
}

function "classes" {
  params  = ["YSample"]
  returns = ["ClassCount"]
}

function "ratio" {
  returns = ["Ratio"]
}

resource "XSample" {
  function = "sample"
}

resource "YSample" {
  function = "sample"
}

metafeature "RowCount" {
  function = "count"
}

metafeature "ClassCount" {
  function = "classes"
}

metafeature "ClassesPerRow" {
  function = "ratio"
  params   = ["ClassCount", "RowCount"]
  returns  = ["ClassesPerRow"]
}
`
	r, err := newTestRegistry(t, manifest, "sample", "count", "classes", "ratio")
	require.NoError(t, err)

	t.Run("target itself is dependent", func(t *testing.T) {
		assert.True(t, r.IsTargetDependent("Y"))
	})

	t.Run("row sample is exempt despite using the target", func(t *testing.T) {
		assert.False(t, r.IsTargetDependent("XSample"))
	})

	t.Run("chain through the exempt sample is independent", func(t *testing.T) {
		assert.False(t, r.IsTargetDependent("RowCount"))
	})

	t.Run("chain through the sampled target is dependent", func(t *testing.T) {
		assert.True(t, r.IsTargetDependent("YSample"))
		assert.True(t, r.IsTargetDependent("ClassCount"))
	})

	t.Run("dependence flows through override params", func(t *testing.T) {
		assert.True(t, r.IsTargetDependent("ClassesPerRow"))
	})

	t.Run("other inputs are independent", func(t *testing.T) {
		assert.False(t, r.IsTargetDependent("X"))
		assert.False(t, r.IsTargetDependent("dne"))
	})

	t.Run("group listing", func(t *testing.T) {
		assert.Equal(t, []string{"ClassCount", "ClassesPerRow"}, r.TargetDependent())
	})
}
