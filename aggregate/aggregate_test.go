package aggregate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreway/httpcore/core"
)

func TestShouldAggregate(t *testing.T) {
	a := New(1024)
	assert.False(t, a.ShouldAggregate(None, "application/json"))
	assert.True(t, a.ShouldAggregate(Always, "application/json"))
	assert.False(t, a.ShouldAggregate(OnlyForFormData, "application/json"))
	assert.True(t, a.ShouldAggregate(OnlyForFormData, "application/x-www-form-urlencoded"))
}

func TestAggregateWithinLimit(t *testing.T) {
	a := New(16)
	data, err := a.Aggregate(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestAggregateExceedsLimit(t *testing.T) {
	a := New(4)
	_, err := a.Aggregate(strings.NewReader("hello world"))
	require.Error(t, err)
	e, ok := core.As(err, core.PayloadTooLarge)
	require.True(t, ok)
	assert.Equal(t, core.PayloadTooLarge, e.Kind)
}

func TestDecodeForm(t *testing.T) {
	values, err := DecodeForm([]byte("a=1&b=two"))
	require.NoError(t, err)
	assert.Equal(t, "1", values.Get("a"))
	assert.Equal(t, "two", values.Get("b"))
}
