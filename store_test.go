package authstate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatloop/go-authstate"
)

func waitSnapshot(t *testing.T, ch <-chan authstate.Snapshot) authstate.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "snapshot channel closed unexpectedly")
		return snap
	case <-time.After(time.Second * 2):
		t.Fatal("timed out waiting for store update")
	}
	return authstate.Snapshot{}
}

func assertNoSnapshot(t *testing.T, ch <-chan authstate.Snapshot) {
	t.Helper()
	select {
	case snap := <-ch:
		t.Fatalf("expected no store update, got %+v", snap)
	case <-time.After(time.Millisecond * 100):
	}
}

func TestStoreStartsLoading(t *testing.T) {
	store := authstate.NewStore()

	snap := store.Current()

	assert.True(t, snap.Loading)
	assert.Nil(t, snap.Session)
	assert.Nil(t, snap.Profile)
	assert.False(t, snap.Authenticated())
}

func TestSnapshotAuthenticatedRequiresProfile(t *testing.T) {
	snap := authstate.Snapshot{
		Session: &authstate.Session{Token: "tok", Subject: "u1"},
	}

	// A session without a resolved profile is never authenticated.
	assert.False(t, snap.Authenticated())

	snap.Profile = &authstate.UserProfile{ID: "u1", Role: authstate.RoleUser}
	assert.True(t, snap.Authenticated())
}

func TestStoreSubscribeUnsubscribeClosesChannel(t *testing.T) {
	store := authstate.NewStore()

	ch, unsubscribe := store.Subscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")

	// Second call is a no-op.
	unsubscribe()
}

func TestStoreSlowReaderObservesLatestState(t *testing.T) {
	svc := &fakeIdentity{
		getProfile: func(ctx context.Context, subject string) (*authstate.ProfileRecord, error) {
			return &authstate.ProfileRecord{ID: subject, Name: "Ana", Email: "ana@example.com", Role: authstate.RoleUser}, nil
		},
	}
	orch := authstate.NewOrchestrator(svc)
	store := orch.Store()

	ch, unsubscribe := store.Subscribe()
	defer unsubscribe()

	require.NoError(t, orch.Start(context.Background()))
	defer orch.Stop()

	// Initial resolution: no session.
	snap := waitSnapshot(t, ch)
	assert.False(t, snap.Loading)
	assert.False(t, snap.Authenticated())

	// Two sign-ins back to back without reading in between: the reader only
	// ever sees the most recent state.
	svc.emit(authstate.SessionEvent{Kind: authstate.EventSignedIn, Session: &authstate.Session{Token: "t1", Subject: "u1"}})
	svc.emit(authstate.SessionEvent{Kind: authstate.EventSignedOut})

	deadline := time.After(time.Second * 2)
	for {
		select {
		case snap = <-ch:
			if !snap.Authenticated() && !snap.Loading {
				assert.Nil(t, snap.Session)
				return
			}
		case <-deadline:
			t.Fatal("never observed the signed-out state")
		}
	}
}
