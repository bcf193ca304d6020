package value_test

import (
	"testing"

	"github.com/streampref/streampref/value"
	"github.com/stretchr/testify/require"
)

func TestCompareNumeric(t *testing.T) {
	i := value.NewInteger(3)
	f := value.NewFloat(3.5)

	ok, err := i.LT(f)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.GT(i)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCompareText(t *testing.T) {
	a := value.NewText("alice")
	b := value.NewText("bob")

	ok, err := a.LT(b)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.EQ(value.NewText("alice"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCompareTypeMismatch(t *testing.T) {
	_, err := value.NewInteger(1).EQ(value.NewText("1"))
	require.ErrorIs(t, err, value.ErrTypeMismatch)
}

func TestEquality(t *testing.T) {
	ok, err := value.NewInteger(5).EQ(value.NewFloat(5))
	require.NoError(t, err)
	require.True(t, ok)
}
