package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUserDefaultsToGuest(t *testing.T) {
	s := New(AppState{})
	assert.Equal(t, Guest, s.CurrentUser())
}

func TestSetUser(t *testing.T) {
	s := New(AppState{})

	u := "ana"
	s.SetUser(&u)
	assert.Equal(t, "ana", s.CurrentUser())
	assert.True(t, s.Snapshot().LoggedIn)

	s.SetUser(nil)
	assert.Equal(t, Guest, s.CurrentUser())
	assert.False(t, s.Snapshot().LoggedIn)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(AppState{})
	u := "ana"
	s.SetUser(&u)

	snap := s.Snapshot()
	*snap.User = "mallory"

	assert.Equal(t, "ana", s.CurrentUser(), "writing through a snapshot must not reach the owned state")
}

func TestMutateIsExclusive(t *testing.T) {
	s := New(AppState{})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Mutate(func(st *AppState) {
				st.ClockText += "x"
			})
		}()
	}
	wg.Wait()

	assert.Len(t, s.Snapshot().ClockText, 100)
}

func TestPresentDeliversInSubmissionOrder(t *testing.T) {
	s := New(AppState{})

	var got []any
	s.Attach(func(msg any) { got = append(got, msg) })

	s.Present(1)
	s.Present(2)
	s.Present(3)

	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestPresentAfterReleaseIsSilent(t *testing.T) {
	s := New(AppState{})

	delivered := 0
	s.Attach(func(any) { delivered++ })
	s.Present("before")
	s.Release()

	require.NotPanics(t, func() { s.Present("after") })
	assert.Equal(t, 1, delivered, "effects after teardown are dropped, never delivered twice")
}

func TestPresentBeforeAttachIsSilent(t *testing.T) {
	s := New(AppState{})
	require.NotPanics(t, func() { s.Present("early") })
}
