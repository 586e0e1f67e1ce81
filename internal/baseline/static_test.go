package baseline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSource_Averages(t *testing.T) {
	t.Parallel()

	src := NewStaticSource(map[string]float64{
		"electronics": 150,
		"computers":   400,
	})

	got, err := src.Averages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"electronics": 150,
		"computers":   400,
	}, got)
}

func TestStaticSource_CopiesInput(t *testing.T) {
	t.Parallel()

	in := map[string]float64{"general": 100}
	src := NewStaticSource(in)
	in["general"] = 999

	got, err := src.Averages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, got["general"])
}

func TestStaticSource_ReturnsFreshMap(t *testing.T) {
	t.Parallel()

	src := NewStaticSource(map[string]float64{"general": 100})

	first, err := src.Averages(context.Background())
	require.NoError(t, err)
	first["general"] = 1

	second, err := src.Averages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, second["general"])
}

func TestStaticSource_Empty(t *testing.T) {
	t.Parallel()

	src := NewStaticSource(nil)
	got, err := src.Averages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
