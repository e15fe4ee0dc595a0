package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the parley configuration file.
type Config struct {
	SessionID  string           `toml:"session_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Language   string           `toml:"language"` // default text target: "es", "it" or "fr"
	Database   DatabaseConfig   `toml:"database"`
	Audio      AudioConfig      `toml:"audio"`
	AI         AIConfig         `toml:"ai"`
	Device     DeviceConfig     `toml:"device"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// DatabaseConfig selects where the message log is persisted.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory" or "nats"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite

	// NATS-specific fields (only used when Type == "nats")
	NATSURL    string `toml:"nats_url,omitempty"`
	NATSBucket string `toml:"nats_bucket,omitempty"`
}

// AudioConfig selects where recordings are stored.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type AudioConfig struct {
	Type string `toml:"type"` // "filesystem", "memory" or "s3"

	// FileSystem-specific fields (only used when Type == "filesystem")
	Dir string `toml:"dir,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"` // for S3-compatible services
}

// AIConfig selects the translation service.
type AIConfig struct {
	Type      string `toml:"type"`                  // "gemini" or "stub"
	Model     string `toml:"model,omitempty"`       // defaults to gemini-2.0-flash
	APIKeyEnv string `toml:"api_key_env,omitempty"` // env var holding the API key, defaults to GEMINI_API_KEY
}

// DeviceConfig selects the microphone, playback and speech devices.
type DeviceConfig struct {
	Recorder   string   `toml:"recorder"`              // "malgo" or "file"
	SampleRate int      `toml:"sample_rate,omitempty"` // capture rate in Hz, defaults to 16000
	InputFile  string   `toml:"input_file,omitempty"`  // only used for recorder=file
	Player     string   `toml:"player"`                // "oto" or "none"
	SpeechCmd  []string `toml:"speech_cmd,omitempty"`  // e.g. ["espeak-ng", "-v", "{lang}", "{text}"]
}

// EncryptionConfig holds paths to the age key pair used for history export.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a Config with local-only defaults rooted at baseDir.
func NewConfig(sessionID, baseDir string) *Config {
	return &Config{
		SessionID: sessionID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Language:  "es",
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Audio: AudioConfig{
			Type: "filesystem",
			Dir:  filepath.Join(baseDir, "recordings"),
		},
		AI: AIConfig{
			Type:      "gemini",
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Device: DeviceConfig{
			Recorder:   "malgo",
			SampleRate: 16000,
			Player:     "oto",
			SpeechCmd:  []string{"espeak-ng", "-v", "{lang}", "{text}"},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "parley.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "parley.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("initializing config at %s: %w", path, err)
	}
	return nil
}
