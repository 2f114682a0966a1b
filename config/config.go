package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Settings holds the process configuration. Values are read from MINDSET_ prefixed
// environment variables, e.g. MINDSET_SUPABASE_URL.
type Settings struct {
	SupabaseURL string `envconfig:"SUPABASE_URL" default:""`
	SupabaseKey string `envconfig:"SUPABASE_KEY" default:""`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiBaseURL   string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiTextModel string `envconfig:"GEMINI_TEXT_MODEL" default:"gemini-2.0-flash"`
	GeminiTTSModel  string `envconfig:"GEMINI_TTS_MODEL" default:"gemini-2.5-flash-preview-tts"`
	GeminiVoice     string `envconfig:"GEMINI_VOICE" default:"Kore"`

	DataDir    string `envconfig:"DATA_DIR" default:".mindset"`
	DBFile     string `envconfig:"DB_FILE" default:"local.db"`
	ListenAddr string `envconfig:"LISTEN_ADDR" default:"127.0.0.1:8787"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	// AllowedOrigin is the shell origin allowed to call the bridge.
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"*"`

	AudioSampleRate int `envconfig:"AUDIO_SAMPLE_RATE" default:"24000"`
	AudioChannels   int `envconfig:"AUDIO_CHANNELS" default:"1"`

	RemoteTimeout         time.Duration `envconfig:"REMOTE_TIMEOUT" default:"15s"`
	GenerationTimeout     time.Duration `envconfig:"GENERATION_TIMEOUT" default:"60s"`
	VisualizationDuration time.Duration `envconfig:"VISUALIZATION_DURATION" default:"5m"`
}

// Load reads Settings from the environment and validates them.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("MINDSET", &s); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	Logger.WithFields(logrus.Fields{
		"remote_configured": s.RemoteConfigured(),
		"gemini_configured": s.GeminiAPIKey != "",
		"data_dir":          s.DataDir,
		"listen_addr":       s.ListenAddr,
	}).Info("Configuration loaded")

	return &s, nil
}

// Validate rejects settings the audio container or the bridge cannot work with.
func (s *Settings) Validate() error {
	if s.AudioSampleRate <= 0 {
		return fmt.Errorf("invalid AUDIO_SAMPLE_RATE: %d", s.AudioSampleRate)
	}
	if s.AudioChannels != 1 && s.AudioChannels != 2 {
		return fmt.Errorf("invalid AUDIO_CHANNELS: %d (must be 1 or 2)", s.AudioChannels)
	}
	if s.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR must not be empty")
	}
	if s.VisualizationDuration <= 0 {
		return fmt.Errorf("invalid VISUALIZATION_DURATION: %s", s.VisualizationDuration)
	}
	return nil
}

// RemoteConfigured reports whether both Supabase URL and key are present. Without them
// the app runs purely on the local store.
func (s *Settings) RemoteConfigured() bool {
	return s.SupabaseURL != "" && s.SupabaseKey != ""
}

// DBPath is the SQLite file backing the local stores.
func (s *Settings) DBPath() string {
	return filepath.Join(s.DataDir, s.DBFile)
}
