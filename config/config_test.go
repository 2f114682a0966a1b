package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MINDSET_SUPABASE_URL", "")
	t.Setenv("MINDSET_SUPABASE_KEY", "")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24000, s.AudioSampleRate)
	assert.Equal(t, 1, s.AudioChannels)
	assert.Equal(t, 15*time.Second, s.RemoteTimeout)
	assert.Equal(t, "127.0.0.1:8787", s.ListenAddr)
	assert.False(t, s.RemoteConfigured())
	assert.Equal(t, filepath.Join(".mindset", "local.db"), s.DBPath())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MINDSET_SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("MINDSET_SUPABASE_KEY", "anon")
	t.Setenv("MINDSET_AUDIO_CHANNELS", "2")
	t.Setenv("MINDSET_REMOTE_TIMEOUT", "3s")

	s, err := Load()
	require.NoError(t, err)

	assert.True(t, s.RemoteConfigured())
	assert.Equal(t, 2, s.AudioChannels)
	assert.Equal(t, 3*time.Second, s.RemoteTimeout)
}

func TestValidateRejectsBadAudio(t *testing.T) {
	s := &Settings{AudioSampleRate: 24000, AudioChannels: 3, ListenAddr: "x", VisualizationDuration: time.Minute}
	assert.Error(t, s.Validate())

	s.AudioChannels = 1
	s.AudioSampleRate = 0
	assert.Error(t, s.Validate())

	s.AudioSampleRate = 24000
	assert.NoError(t, s.Validate())
}
