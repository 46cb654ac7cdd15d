package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quickshop/storefront/internal/models"
)

func TestFingerprintDeterministic(t *testing.T) {
	product := models.Product{ID: 1, Name: "Mug", Price: 9.5, Stock: 3}

	first, err := Fingerprint(product)
	require.NoError(t, err)
	second, err := Fingerprint(product)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, first, 16)
}

func TestFingerprintIgnoresMapKeyOrder(t *testing.T) {
	a, err := Fingerprint(map[string]any{"x": 1, "y": "two", "z": []int{3}})
	require.NoError(t, err)
	b, err := Fingerprint(map[string]any{"z": []int{3}, "y": "two", "x": 1})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestFingerprintDistinguishesValues(t *testing.T) {
	a, err := Fingerprint(models.Product{ID: 1, Name: "Mug"})
	require.NoError(t, err)
	b, err := Fingerprint(models.Product{ID: 1, Name: "Cup"})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestFingerprintFailsLoudlyOnUnserializableInput(t *testing.T) {
	_, err := Fingerprint(make(chan int))
	require.Error(t, err)
}
