package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	SectionSystem = "system"
	SectionAuth   = "auth"

	// EnvConfigPath overrides the default configuration file location.
	EnvConfigPath = "DZSHUFFLED_CONFIG_PATH"

	defaultPort      = 8090
	defaultRateLimit = 10.0
	defaultEditor    = "vim"
)

// Store is an ordered, section based configuration backed by a TOML file.
//
// Values are exposed as strings regardless of their TOML type; typed accessors such as [Store.Port] parse them at the boundary.
// Section order follows the file so scenario listings are stable.
type Store struct {
	mu       sync.RWMutex
	path     string
	order    []string
	sections map[string]map[string]any
}

// DefaultConfigPath returns the configuration path from [EnvConfigPath], falling back to ~/.config/dzshuffled/config.toml.
func DefaultConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "dzshuffled", "config.toml")
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	store, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	store.path = path
	return store, nil
}

// ParseConfig parses TOML data into an in-memory [Store] that is not bound to a file.
func ParseConfig(data []byte) (*Store, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	store := &Store{sections: make(map[string]map[string]any)}
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		name := key[0]
		section, ok := raw[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: option %q is outside of a section", ErrInvalidConfig, name)
		}
		for option, value := range section {
			if _, nested := value.(map[string]any); nested {
				return nil, fmt.Errorf("%w: nested table %s.%s is not supported", ErrInvalidConfig, name, option)
			}
		}
		store.order = append(store.order, name)
		store.sections[name] = section
	}

	return store, nil
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Path returns the file backing the store, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Sections returns section names in file order.
func (s *Store) Sections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// All returns the whole configuration as section -> option -> value.
func (s *Store) All() map[string]map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[string]map[string]string, len(s.sections))
	for name, section := range s.sections {
		all[name] = stringify(section)
	}
	return all
}

// Section returns a copy of one section, reporting whether it exists.
func (s *Store) Section(name string) (map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	section, ok := s.sections[name]
	if !ok {
		return nil, false
	}
	return stringify(section), true
}

// Get returns a single option value, or an empty string when the section or option is absent.
func (s *Store) Get(section, option string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.sections[section]
	if !ok {
		return ""
	}
	value, ok := values[option]
	if !ok {
		return ""
	}
	return stringValue(value)
}

// Set stores an option value, creating the section when needed, and writes the file immediately.
func (s *Store) Set(section, option, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sections[section]; !ok {
		s.sections[section] = make(map[string]any)
		s.order = append(s.order, section)
	}
	s.sections[section][option] = value

	return s.save()
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}

	var buf bytes.Buffer
	for i, name := range s.order {
		if i > 0 {
			buf.WriteString("\n")
		}
		enc := toml.NewEncoder(&buf)
		enc.Indent = ""
		if err := enc.Encode(map[string]map[string]any{name: s.sections[name]}); err != nil {
			return fmt.Errorf("failed to encode section %s: %w", name, err)
		}
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Port returns the local port used for the authorization callback.
func (s *Store) Port() (int, error) {
	raw := s.Get(SectionSystem, "port")
	if raw == "" {
		return defaultPort, nil
	}

	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%w: system.port must be a valid port number, got %q", ErrInvalidConfig, raw)
	}
	return port, nil
}

// RateLimit returns the maximum number of API requests per second.
func (s *Store) RateLimit() (float64, error) {
	raw := s.Get(SectionSystem, "rate_limit")
	if raw == "" {
		return defaultRateLimit, nil
	}

	limit, err := strconv.ParseFloat(raw, 64)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("%w: system.rate_limit must be a positive number, got %q", ErrInvalidConfig, raw)
	}
	return limit, nil
}

// AuthTimeout returns how long to wait for the authorization callback; zero means no limit.
func (s *Store) AuthTimeout() (time.Duration, error) {
	raw := s.Get(SectionSystem, "auth_timeout")
	if raw == "" {
		return 0, nil
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("%w: system.auth_timeout must be a non-negative number of seconds, got %q", ErrInvalidConfig, raw)
	}
	return time.Duration(seconds) * time.Second, nil
}

// Editor returns the program used to edit the configuration file.
func (s *Store) Editor() string {
	if editor := s.Get(SectionSystem, "editor"); editor != "" {
		return editor
	}
	return defaultEditor
}

// Credentials returns the Deezer application id, secret and the saved token.
func (s *Store) Credentials() (appID, secret, token string) {
	return s.Get(SectionAuth, "app_id"), s.Get(SectionAuth, "secret"), s.Get(SectionAuth, "token")
}

func stringify(section map[string]any) map[string]string {
	values := make(map[string]string, len(section))
	for option, value := range section {
		values[option] = stringValue(value)
	}
	return values
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringValue(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
