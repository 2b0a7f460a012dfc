package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("service unavailable")

func fail(context.Context) error    { return errUnavailable }
func succeed(context.Context) error { return nil }

// TestClosedState 正常请求保持关闭状态
func TestClosedState(t *testing.T) {
	cb := New("test", Config{Interval: 10 * time.Second})

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(context.Background(), succeed))
	}

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(10), cb.Counts().TotalSuccesses)
}

// TestTripToOpen 连续失败后熔断，熔断期间不调用fn
func TestTripToOpen(t *testing.T) {
	var transitions []string
	cb := New("cache", Config{
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(context.Background(), fail), errUnavailable)
	}
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, []string{"cache:CLOSED->OPEN"}, transitions)

	called := false
	err := cb.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called)
}

// TestHalfOpenRecovery 超时后进入半开，探测成功则关闭
func TestHalfOpenRecovery(t *testing.T) {
	cb := New("test", Config{
		Timeout:     20 * time.Millisecond,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	_ = cb.Execute(context.Background(), fail)
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), succeed))
	assert.Equal(t, StateClosed, cb.State())
}

// TestHalfOpenFailure 半开状态探测失败重新打开
func TestHalfOpenFailure(t *testing.T) {
	cb := New("test", Config{
		Timeout:     20 * time.Millisecond,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	_ = cb.Execute(context.Background(), fail)
	time.Sleep(30 * time.Millisecond)

	_ = cb.Execute(context.Background(), fail)
	assert.Equal(t, StateOpen, cb.State())
}

// TestIsSuccessful 业务性结果（如缓存未命中）不计为失败
func TestIsSuccessful(t *testing.T) {
	errMiss := errors.New("miss")
	cb := New("test", Config{
		ReadyToTrip:  func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errMiss) },
	})

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(context.Background(), func(context.Context) error { return errMiss }), errMiss)
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(5), cb.Counts().TotalSuccesses)
}

// TestCanceledContext ctx已取消时不执行
func TestCanceledContext(t *testing.T) {
	cb := New("test", Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, succeed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint32(0), cb.Counts().Requests)
}

// TestIntervalResetsCounts 关闭状态下统计窗口到期清零
func TestIntervalResetsCounts(t *testing.T) {
	cb := New("test", Config{Interval: 20 * time.Millisecond})

	_ = cb.Execute(context.Background(), fail)
	assert.Equal(t, uint32(1), cb.Counts().TotalFailures)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(0), cb.Counts().TotalFailures)
}
