package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockingPoolRunsSubmittedWork(t *testing.T) {
	p := NewBlockingPool(2, 4, time.Second)
	defer p.Close()

	ran := false
	err := p.Submit(func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestBlockingPoolPropagatesHandlerError(t *testing.T) {
	p := NewBlockingPool(2, 4, time.Second)
	defer p.Close()

	sentinel := assert.AnError
	err := p.Submit(func() error { return sentinel })
	assert.Equal(t, sentinel, err)
}
