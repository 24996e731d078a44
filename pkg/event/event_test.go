package event_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/marmita/pkg/event"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	event.Flush()
	defer event.Flush()

	var got []string
	event.Listen("order.placed", func(_ context.Context, p interface{}) { got = append(got, "a:"+p.(string)) })
	event.Listen("order.placed", func(_ context.Context, p interface{}) { got = append(got, "b:"+p.(string)) })
	event.Listen("other", func(_ context.Context, _ interface{}) { got = append(got, "other") })

	event.Fire(context.Background(), "order.placed", "1")

	assert.Equal(t, []string{"a:1", "b:1"}, got)
}

func TestFireSurvivesPanickingListener(t *testing.T) {
	event.Flush()
	defer event.Flush()

	called := false
	event.Listen("order.placed", func(context.Context, interface{}) { panic("boom") })
	event.Listen("order.placed", func(context.Context, interface{}) { called = true })

	assert.NotPanics(t, func() { event.Fire(context.Background(), "order.placed", nil) })
	assert.True(t, called)
}

func TestFireAsyncOutlivesCancelledContext(t *testing.T) {
	event.Flush()
	defer event.Flush()

	var wg sync.WaitGroup
	wg.Add(1)
	var ctxErr error
	event.Listen("order.status_changed", func(ctx context.Context, _ interface{}) {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		ctxErr = ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	event.FireAsync(ctx, "order.status_changed", nil)
	cancel()
	wg.Wait()

	assert.NoError(t, ctxErr)
}
