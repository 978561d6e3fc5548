package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeterministicSameInputSameVector(t *testing.T) {
	d := NewDeterministic(64)

	first, err := d.Embed(context.Background(), "machine learning capstone")
	require.NoError(t, err)

	second, err := d.Embed(context.Background(), "machine learning capstone")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestDeterministicDifferentInputsDiffer(t *testing.T) {
	d := NewDeterministic(64)

	a, err := d.Embed(context.Background(), "computer vision")
	require.NoError(t, err)

	b, err := d.Embed(context.Background(), "database systems")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestDeterministicUnitNorm(t *testing.T) {
	d := NewDeterministic(128)

	for _, text := range []string{"a", "some longer query about robotics", ""} {
		vec, err := d.Embed(context.Background(), text)
		require.NoError(t, err)
		require.Len(t, vec, 128)

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		require.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	}
}

func TestDeterministicCaseInsensitive(t *testing.T) {
	d := NewDeterministic(32)

	a, err := d.Embed(context.Background(), "Machine Learning")
	require.NoError(t, err)

	b, err := d.Embed(context.Background(), "machine learning")
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestDeterministicDefaultDim(t *testing.T) {
	d := NewDeterministic(0)

	vec, err := d.Embed(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, vec, 256)
}
