package app

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "age,color,class\n1,red,a\n2,,b\n,blue,a\n")

	features, target, err := loadCSV(path, "class")
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "color"}, features.ColumnNames())
	require.NotNil(t, target)
	assert.Equal(t, "class", target.Name)
	assert.Equal(t, []string{"a", "b", "a"}, target.Values)

	age, ok := features.Column("age")
	require.True(t, ok)
	require.True(t, age.IsNumeric())
	assert.Equal(t, 1.0, age.Numeric[0])
	assert.True(t, math.IsNaN(age.Numeric[2]), "empty numeric cell is missing")

	color, ok := features.Column("color")
	require.True(t, ok)
	assert.False(t, color.IsNumeric())
	assert.Equal(t, []string{"red", "", "blue"}, color.Values)
}

func TestLoadCSVWithoutTarget(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n3,4\n")

	features, target, err := loadCSV(path, "")
	require.NoError(t, err)
	assert.Nil(t, target)
	assert.Equal(t, 2, features.NumCols())
	assert.Equal(t, 2, features.NumRows())
}

func TestLoadCSVErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, _, err := loadCSV(filepath.Join(t.TempDir(), "dne.csv"), "")
		assert.ErrorContains(t, err, "opening dataset")
	})

	t.Run("missing target column", func(t *testing.T) {
		path := writeCSV(t, "a,b\n1,2\n")
		_, _, err := loadCSV(path, "class")
		assert.ErrorContains(t, err, `target column "class" not found`)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeCSV(t, "")
		_, _, err := loadCSV(path, "")
		assert.ErrorContains(t, err, "no header row")
	})
}
