package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ProductID string
	Quantity  int
	Coupon    string
}

func TestFingerprint_StableForEqualValues(t *testing.T) {
	a, err := Fingerprint(payload{ProductID: "p1", Quantity: 2, Coupon: "SAVE10"})
	require.NoError(t, err)
	b, err := Fingerprint(payload{ProductID: "p1", Quantity: 2, Coupon: "SAVE10"})
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.True(t, Equal(a, b))
}

func TestFingerprint_DiffersOnAnyField(t *testing.T) {
	base, err := Fingerprint(payload{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	other, err := Fingerprint(payload{ProductID: "p1", Quantity: 3})
	require.NoError(t, err)

	assert.False(t, Equal(base, other))
	assert.False(t, Equal("", ""))
}

func TestFingerprint_UnsupportedValue(t *testing.T) {
	_, err := Fingerprint(func() {})
	require.Error(t, err)
}
