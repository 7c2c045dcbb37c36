package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Threading modes. Strict follows only self-reply continuations; permissive
// treats every reply edge as a thread continuation.
const (
	ModeStrict     = "strict"
	ModePermissive = "permissive"
)

// Config is the application's configuration model.
// It captures the archive owner, threading policy, and output targets.
type Config struct {
	Account   AccountConfig   `yaml:"account"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Threading ThreadingConfig `yaml:"threading"`
	Anonymize AnonymizeConfig `yaml:"anonymize"`
	Output    OutputConfig    `yaml:"output"`
	Storage   StorageConfig   `yaml:"storage"`
}

type AccountConfig struct {
	// Screen name of the archive owner; distinguishes self-replies
	// from replies to others. If empty, read from WEFT_OWNER.
	ScreenName string `yaml:"screenName"`
	// Numeric account id used for DM direction. If empty, read WEFT_ACCOUNT_ID.
	AccountID string `yaml:"accountId"`
}

type ArchiveConfig struct {
	// Directory holding the exported archive data files.
	Dir string `yaml:"dir"`
	// File names inside Dir, relative.
	PostsFile    string `yaml:"postsFile"`
	MessagesFile string `yaml:"messagesFile"`
}

type ThreadingConfig struct {
	Mode string `yaml:"mode"` // "strict" or "permissive"
}

type AnonymizeConfig struct {
	// Salt for user-id hashing. If empty, read from WEFT_SALT.
	Salt string `yaml:"salt"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type StorageConfig struct {
	// Path of the SQLite analysis artifact written by the report command.
	DBPath string `yaml:"dbPath"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Account: AccountConfig{},
		Archive: ArchiveConfig{
			Dir:          "./archive",
			PostsFile:    "tweets.js",
			MessagesFile: "direct-messages.js",
		},
		Threading: ThreadingConfig{Mode: ModeStrict},
		Anonymize: AnonymizeConfig{},
		Output:    OutputConfig{Dir: "./out"},
		Storage:   StorageConfig{DBPath: "./out/weft.db"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Account.ScreenName == "" {
		c.Account.ScreenName = os.Getenv("WEFT_OWNER")
	}
	if c.Account.AccountID == "" {
		c.Account.AccountID = os.Getenv("WEFT_ACCOUNT_ID")
	}
	if c.Anonymize.Salt == "" {
		c.Anonymize.Salt = os.Getenv("WEFT_SALT")
	}
}

// Validate checks the parts every command depends on.
func (c Config) Validate() error {
	if c.Account.ScreenName == "" {
		return errors.New("account.screenName is required (or set WEFT_OWNER)")
	}
	switch c.Threading.Mode {
	case ModeStrict, ModePermissive:
	default:
		return fmt.Errorf("threading.mode: unknown mode %q", c.Threading.Mode)
	}
	return nil
}

// RequireAccountID checks the account id that DM direction is derived
// from. Commands that only thread posts do not need it.
func (c Config) RequireAccountID() error {
	if c.Account.AccountID == "" {
		return errors.New("account.accountId is required (or set WEFT_ACCOUNT_ID)")
	}
	return nil
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
