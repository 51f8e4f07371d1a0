package moveonly

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue_TakeTransfersOwnershipOnce(t *testing.T) {
	v := New(strings.NewReader("payload"))
	require.True(t, v.Valid())

	r, ok := v.Take()
	require.True(t, ok)
	require.NotNil(t, r)

	r2, ok := v.Take()
	require.False(t, ok)
	require.Nil(t, r2)
	require.False(t, v.Valid())
}

func TestValue_GetExposesPayloadByReference(t *testing.T) {
	v := New([]int{1, 2})

	p := v.Get()
	require.NotNil(t, p)
	*p = append(*p, 3)

	got, ok := v.Take()
	require.True(t, ok)
	require.Equal(t, []int{1, 2, 3}, got)
	require.Nil(t, v.Get())
}

func TestValue_MoveEmptiesSource(t *testing.T) {
	src := New("token")

	dst := src.Move()
	require.False(t, src.Valid())
	require.True(t, dst.Valid())

	got, ok := dst.Take()
	require.True(t, ok)
	require.Equal(t, "token", got)

	empty := src.Move()
	require.False(t, empty.Valid())
}

func TestValue_GetPointerDoesNotSurviveTake(t *testing.T) {
	v := New("secret")
	p := v.Get()
	require.Equal(t, "secret", *p)

	got, ok := v.Take()
	require.True(t, ok)
	require.Equal(t, "secret", got)

	// The earlier pointer aliases the emptied storage.
	require.Equal(t, "", *p)
	require.Nil(t, v.Get())
}

func TestValue_WithIsExclusiveWithTake(t *testing.T) {
	v := New(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.With(func(n *int) { *n++ })
		}()
	}
	wg.Wait()

	require.True(t, v.With(func(n *int) { require.Equal(t, 50, *n) }))

	got, ok := v.Take()
	require.True(t, ok)
	require.Equal(t, 50, got)

	called := false
	require.False(t, v.With(func(*int) { called = true }))
	require.False(t, called)
}
