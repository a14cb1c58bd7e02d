package room

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	t.Parallel()

	rm := NewTestManager()

	code := rm.generateRoomCodeLocked()
	assert.Len(t, code, roomCodeLength)
	for _, c := range code {
		assert.True(t, strings.ContainsRune(roomCodeChars, c), "unexpected char %q", c)
	}
}

func TestGenerateRoomCode_SkipsCollisions(t *testing.T) {
	t.Parallel()

	rm := NewTestManager()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := rm.generateRoomCodeLocked()
		require.False(t, seen[code])
		seen[code] = true
		rm.rooms[code] = NewTestRoom(code)
	}
}

func TestCleanup_RemovesStaleLobbies(t *testing.T) {
	t.Parallel()

	rm := NewTestManager()
	rm.roomTimeout = 10 * time.Minute

	var closed []string
	rm.OnRoomClosed = func(code string) { closed = append(closed, code) }

	// Stale: lobby phase, no bound connections, past the timeout
	stale := NewTestRoom("STALE1")
	stale.CreatedAt = time.Now().Add(-time.Hour)
	stale.AddPlayerForTest("ghost", true).Status = StatusDisconnected
	rm.AddRoomForTest(stale)

	// Empty rooms go regardless of age
	empty := NewTestRoom("EMPTY1")
	rm.AddRoomForTest(empty)

	// Fresh lobby survives
	fresh := NewTestRoom("FRESH1")
	fresh.AddPlayerForTest("alice", true)
	rm.AddRoomForTest(fresh)

	// Old but started rooms are not the lobby's to reap
	started := NewTestRoom("START1")
	started.Phase = PhaseStarted
	started.CreatedAt = time.Now().Add(-time.Hour)
	started.AddPlayerForTest("bob", true)
	rm.AddRoomForTest(started)

	rm.cleanup()

	assert.Nil(t, rm.GetRoom("STALE1"))
	assert.Nil(t, rm.GetRoom("EMPTY1"))
	assert.NotNil(t, rm.GetRoom("FRESH1"))
	assert.NotNil(t, rm.GetRoom("START1"))
	assert.ElementsMatch(t, []string{"STALE1", "EMPTY1"}, closed)
}
