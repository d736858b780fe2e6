package cache

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestComputeSessionKey_PhaseBoundaries(t *testing.T) {
	tests := []struct {
		utc  string
		want string
	}{
		{"2026-10-16T13:29:00Z", "261016-1pre"},
		{"2026-10-16T13:30:00Z", "261016-2in"},
		{"2026-10-16T19:59:59Z", "261016-2in"},
		{"2026-10-16T20:00:00Z", "261016-3post"},
		{"2026-10-17T03:00:00Z", "261016-3post"}, // 23:00 the previous day in market time
		{"2026-10-17T05:00:00Z", "261017-1pre"},
	}
	for _, tt := range tests {
		got := ComputeSessionKey(at(t, tt.utc), -4)
		assert.Equal(t, tt.want, got.String(), tt.utc)
	}
}

func TestComputeSessionKey_FractionalOffset(t *testing.T) {
	// 04:00 UTC is 09:30 at +5:30.
	got := ComputeSessionKey(at(t, "2026-01-02T04:00:00Z"), 5.5)
	assert.Equal(t, "260102-2in", got.String())
}

func TestSessionKeys_SortChronologically(t *testing.T) {
	chronological := []SessionKey{
		{2025, time.December, 31, PhasePost},
		{2026, time.January, 1, PhasePre},
		{2026, time.January, 1, PhaseIn},
		{2026, time.January, 1, PhasePost},
		{2026, time.January, 30, PhasePre},
		{2026, time.February, 2, PhaseIn},
		{2026, time.October, 9, PhasePost},
		{2026, time.October, 10, PhasePre},
	}
	var keys []string
	for _, k := range chronological {
		keys = append(keys, k.String())
	}
	shuffled := []string{keys[5], keys[0], keys[7], keys[2], keys[6], keys[1], keys[4], keys[3]}
	sort.Strings(shuffled)
	assert.Equal(t, keys, shuffled)
}

func TestParseSessionKey(t *testing.T) {
	k, err := ParseSessionKey("261016-3post")
	require.NoError(t, err)
	assert.Equal(t, SessionKey{2026, time.October, 16, PhasePost}, k)
	assert.Equal(t, "261016-3post", k.String())

	for _, bad := range []string{"", "161026pre", "261016-2pre", "261399-1pre", "261016-9x", "261016_1pre"} {
		_, err := ParseSessionKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestPreviousDay(t *testing.T) {
	k := SessionKey{2026, time.March, 1, PhaseIn}
	assert.Equal(t, "260228-2in", k.PreviousDay().String())

	k = SessionKey{2026, time.January, 1, PhasePre}
	assert.Equal(t, "251231-1pre", k.PreviousDay().String())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "pre", PhasePre.String())
	assert.Equal(t, "in", PhaseIn.String())
	assert.Equal(t, "post", PhasePost.String())
	assert.Equal(t, "phase(7)", Phase(7).String())
}
