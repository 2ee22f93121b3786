package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeccak256(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		require.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Keccak256().StringBE())
		require.Equal(t, Empty, Keccak256(nil))
		require.Equal(t, Empty, Keccak256([]byte{}, nil))
	})
	t.Run("abc", func(t *testing.T) {
		require.Equal(t, "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45", Keccak256([]byte("abc")).StringBE())
	})
	t.Run("concatenation", func(t *testing.T) {
		require.Equal(t, Keccak256([]byte("abc")), Keccak256([]byte("a"), []byte("bc")))
		require.Equal(t, Keccak256([]byte("abc")), Keccak256([]byte("ab"), nil, []byte("c")))
	})
}
