package sizing

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOverflow = errors.New("overflow")

func TestToUint32(t *testing.T) {
	t.Parallel()

	v, err := ToUint32(70000, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, uint32(70000), v)

	_, err = ToUint32(-1, errOverflow)
	assert.ErrorIs(t, err, errOverflow)

	if math.MaxInt > math.MaxUint32 {
		big := int64(math.MaxUint32) + 1
		_, err = ToUint32(int(big), errOverflow)
		assert.ErrorIs(t, err, errOverflow)
	}
}

func TestReadAllSized(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("x"), 100)

	t.Run("within limit", func(t *testing.T) {
		t.Parallel()
		got, err := ReadAllSized(bytes.NewReader(data), 1<<20, 100, errOverflow)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("over limit", func(t *testing.T) {
		t.Parallel()
		_, err := ReadAllSized(bytes.NewReader(data), 10, 99, errOverflow)
		assert.ErrorIs(t, err, errOverflow)
	})

	t.Run("no limit", func(t *testing.T) {
		t.Parallel()
		got, err := ReadAllWithLimit(bytes.NewReader(data), 0, errOverflow)
		require.NoError(t, err)
		assert.Len(t, got, 100)
	})
}
