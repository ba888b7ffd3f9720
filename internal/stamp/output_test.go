package stamp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualsStamp_ComparesValue(t *testing.T) {
	a := Equals().Stamp("hello")
	b := Equals().Stamp("hello")
	c := Equals().Stamp("world")

	require.True(t, a.Equal(b, nil))
	require.False(t, a.Equal(c, nil))
}

func TestInconsequentialStamp_AlwaysEqual(t *testing.T) {
	a := Inconsequential().Stamp("anything")
	b := Inconsequential().Stamp("something else entirely")

	require.True(t, a.Equal(b, nil))
}

func TestOutputStamp_MismatchedKindsNeverEqual(t *testing.T) {
	a := Equals().Stamp("x")
	b := Inconsequential().Stamp("x")

	require.False(t, a.Equal(b, nil))
}

func TestEqualsStamp_UsesSuppliedEqualFunc(t *testing.T) {
	type box struct{ n int }
	a := Equals().Stamp(box{1})
	b := Equals().Stamp(box{1})

	eq := func(x, y any) bool {
		return x.(box).n == y.(box).n
	}
	require.True(t, a.Equal(b, eq))
}
