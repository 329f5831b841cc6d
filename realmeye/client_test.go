package realmeye

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlayerInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/player/Trogdor", r.URL.Path)
		w.Write([]byte(`{
			"name": "Trogdor",
			"rank": 85,
			"alive_fame": 1200,
			"guild_name": "Sanctuary",
			"guild_rank": "Officer",
			"last_seen": "hidden",
			"characters": [{"tier": 6, "is_deceased": false}],
			"description": ["line one", "VRF-ABCDEF"]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	profile, err := client.GetPlayerInfo(context.Background(), "Trogdor")
	require.NoError(t, err)

	assert.Equal(t, "Trogdor", profile.Name)
	assert.Equal(t, 85, profile.Rank)
	assert.Equal(t, "Officer", profile.GuildRank)
	require.Len(t, profile.Characters, 1)
	assert.Equal(t, 6, profile.Characters[0].Tier)
	assert.True(t, profile.HasInDescription("VRF-ABCDEF"))
	assert.False(t, profile.FetchedAt.IsZero())
}

func TestNotFoundCollapsesToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.GetPlayerInfo(context.Background(), "Missing")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = client.GetGraveyardSummary(context.Background(), "Missing")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTransportFailureCollapsesToUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.GetExaltations(context.Background(), "Trogdor")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestIsOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	assert.True(t, NewClient(srv.URL, time.Second).IsOnline(context.Background()))
	assert.False(t, NewClient("http://127.0.0.1:1", 100*time.Millisecond).IsOnline(context.Background()))
}

func TestNameIsPathEscaped(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"player_name": "a b", "names": []}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).GetNameHistory(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "/player/a%20b/names", gotPath)
}
