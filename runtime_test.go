package thread

import (
	"context"
	"testing"
	"time"

	"github.com/Swind/go-thread/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobalRuntime(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, ShutdownGlobalRuntime(ctx))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = ShutdownGlobalRuntime(ctx)
	})
}

func TestInitGlobalRuntime(t *testing.T) {
	resetGlobalRuntime(t)

	require.NoError(t, InitGlobalRuntime(&RuntimeConfig{Name: "global", DefaultPriority: 1}))
	require.NoError(t, InitGlobalRuntime(&RuntimeConfig{Name: "ignored"}))

	assert.Equal(t, "global", GetGlobalRuntime().Name())
	assert.Equal(t, 1, Main().Priority())
}

func TestInitGlobalRuntime_InvalidBounds(t *testing.T) {
	resetGlobalRuntime(t)

	err := InitGlobalRuntime(&RuntimeConfig{Bounds: ClampedPriorityBounds(1, 0)})
	require.Error(t, err)
	assert.Equal(t, "default", GetGlobalRuntime().Name(), "falls back to a default runtime")
}

func TestSpawn_NilParentUsesGlobalMain(t *testing.T) {
	resetGlobalRuntime(t)
	Main().SetPriority(-2)

	th := Spawn(nil, nil)
	require.NoError(t, th.Join(context.Background()))

	assert.Equal(t, -2, Priority(th))
	assert.Same(t, GetGlobalRuntime(), th.Runtime())
}

func TestSpawn_UsesParentRuntime(t *testing.T) {
	resetGlobalRuntime(t)

	rt, err := NewRuntime(&RuntimeConfig{Name: "own", DefaultPriority: 3})
	require.NoError(t, err)

	th := Spawn(rt.Main(), nil)
	th.Wait()

	assert.Same(t, rt, th.Runtime())
	assert.Equal(t, 3, th.Priority())
}

func TestGo_FromBodyAndOutside(t *testing.T) {
	resetGlobalRuntime(t)
	Main().SetPriority(1)

	outside := Go(context.Background(), nil)
	outside.Wait()
	assert.Equal(t, 1, outside.Priority())

	inner := make(chan *Thread, 1)
	parent := Spawn(nil, func(ctx context.Context) error {
		CurrentOrMain(ctx).SetPriority(7)
		child := Go(ctx, nil)
		inner <- child
		return child.Join(ctx)
	})
	require.NoError(t, parent.Join(context.Background()))

	child := <-inner
	assert.Equal(t, 7, child.Priority())
	assert.Equal(t, parent.ID(), child.ParentID())
}

func TestCurrentOrMain(t *testing.T) {
	resetGlobalRuntime(t)
	assert.Same(t, Main(), CurrentOrMain(context.Background()))
}

func TestSetPriority_Dynamic(t *testing.T) {
	resetGlobalRuntime(t)

	th := Spawn(nil, nil)
	th.Wait()

	v, err := SetPriority(th, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = SetPriority(th, "3")
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))
	assert.Equal(t, 3, Priority(th))
}
