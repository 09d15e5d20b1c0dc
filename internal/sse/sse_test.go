package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublish(t *testing.T) {
	h := NewHub(4)

	ch1, cancel1 := h.Subscribe("run")
	defer cancel1()
	ch2, cancel2 := h.Subscribe("run")
	defer cancel2()
	other, cancelOther := h.Subscribe("other")
	defer cancelOther()

	h.Publish("run", "hello")

	require.Len(t, ch1, 1)
	require.Len(t, ch2, 1)
	assert.Equal(t, "hello", <-ch1)
	assert.Equal(t, "hello", <-ch2)
	assert.Len(t, other, 0)
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub(2)
	ch, cancel := h.Subscribe("run")
	defer cancel()

	for i := 0; i < 5; i++ {
		h.Publish("run", "msg")
	}
	assert.Len(t, ch, 2)
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub(0)
	_, cancel1 := h.Subscribe("run")
	ch2, cancel2 := h.Subscribe("run")
	defer cancel2()
	assert.Equal(t, 2, h.Subscribers("run"))

	cancel1()
	cancel1()
	assert.Equal(t, 1, h.Subscribers("run"))

	h.Publish("run", "still here")
	assert.Equal(t, "still here", <-ch2)

	cancel2()
	assert.Equal(t, 0, h.Subscribers("run"))
}
