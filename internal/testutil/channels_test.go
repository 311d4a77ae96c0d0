package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitFor(t *testing.T) {
	t.Parallel()

	ch := make(chan int, 1)
	ch <- 7
	assert.Equal(t, 7, WaitFor[int](t, ch, DefaultTestTimeout, "value not received"))
}
