// internal/config/config.go
//
// This package handles configuration and the .trackplan directory structure.
// Every project that uses trackplan gets a .trackplan/ folder holding the day
// layout (config.yaml), logs, and the run history.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/trackplan/internal/window"
)

const (
	// ProjectDirName is the name of the directory we create in each project
	ProjectDirName = ".trackplan"

	// DefaultServerHost is the loopback interface the API binds by default.
	DefaultServerHost = "127.0.0.1"
	// DefaultServerPort is the API port used when config.yaml omits one.
	DefaultServerPort = 8780

	configFileName = "config.yaml"
	envFileName    = ".env"

	envServerEnabled = "TRACKPLAN_SERVER_ENABLED"
	envServerHost    = "TRACKPLAN_SERVER_HOST"
	envServerPort    = "TRACKPLAN_SERVER_PORT"
)

const defaultProjectConfigYAML = `# trackplan project configuration
version: 1

# Conference day layout. Times are 24-hour HH:MM.
windows:
  morning_start: "09:00"
  lunch: "12:00"
  afternoon_start: "13:00"
  networking_start: "16:00"
  networking_minutes: 60
  tracks: 2

# Default catalog used when -catalog is not given. Relative to the project.
# catalog: talks.txt

server:
  enabled: true
  host: 127.0.0.1
  port: 8780
`

// WindowConfig models the windows block of config.yaml.
type WindowConfig struct {
	MorningStart      string `yaml:"morning_start"`
	Lunch             string `yaml:"lunch"`
	AfternoonStart    string `yaml:"afternoon_start"`
	NetworkingStart   string `yaml:"networking_start"`
	NetworkingMinutes int    `yaml:"networking_minutes"`
	Tracks            int    `yaml:"tracks"`
}

// ServerConfig captures the HTTP API preferences. A nil Enabled means the
// API may be started.
type ServerConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// IsEnabled reports whether -serve may start the API.
func (sc ServerConfig) IsEnabled() bool {
	return sc.Enabled == nil || *sc.Enabled
}

// Address returns the bind address in host:port form.
func (sc ServerConfig) Address() string {
	return net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port))
}

// ProjectConfig models .trackplan/config.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version"`
	Windows WindowConfig `yaml:"windows"`
	Catalog string       `yaml:"catalog,omitempty"`
	Server  ServerConfig `yaml:"server,omitempty"`
}

// Config holds the runtime configuration for trackplan.
type Config struct {
	// ProjectDir is the directory trackplan was run from (or -dir)
	ProjectDir string

	// StateDir is ProjectDir/.trackplan
	StateDir string

	Project ProjectConfig

	// Server is Project.Server with TRACKPLAN_SERVER_* overrides applied.
	// It is never written back to config.yaml.
	Server ServerConfig
}

// InitDir creates the .trackplan directory structure in the given project
// directory and writes a commented default config.yaml when none exists.
//
// Structure created:
// .trackplan/
// ├── config.yaml
// └── logs/         <- trackplan.log and runs.log
func InitDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, ProjectDirName)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(stateDir, configFileName))
}

// NewConfig creates a Config for projectDir. A .env file in the project
// directory is loaded first; variables already set in the environment win.
func NewConfig(projectDir string) (*Config, error) {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	if err := loadEnvFile(filepath.Join(absDir, envFileName)); err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectDir: absDir,
		StateDir:   filepath.Join(absDir, ProjectDirName),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	server, err := serverFromEnv(cfg.Project.Server)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Server = server
	return cfg, nil
}

// serverFromEnv layers the TRACKPLAN_SERVER_* variables over the file values.
// Malformed values are errors rather than silently ignored.
func serverFromEnv(sc ServerConfig) (ServerConfig, error) {
	if value := strings.TrimSpace(os.Getenv(envServerEnabled)); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s=%q is not a boolean", envServerEnabled, value)
		}
		sc.Enabled = &enabled
	}
	if host := strings.TrimSpace(os.Getenv(envServerHost)); host != "" {
		sc.Host = host
	}
	if value := strings.TrimSpace(os.Getenv(envServerPort)); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || !isValidPort(port) {
			return ServerConfig{}, fmt.Errorf("%s=%q is not a valid port", envServerPort, value)
		}
		sc.Port = port
	}
	return sc, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// LogPath returns the diagnostic log file
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "trackplan.log")
}

// HistoryPath returns the run history file
func (c *Config) HistoryPath() string {
	return filepath.Join(c.LogsDir(), "runs.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, configFileName)
}

// DefaultCatalog returns the configured catalog path, absolute, or "".
func (c *Config) DefaultCatalog() string {
	return c.Project.Catalog
}

// SetDefaultCatalog updates the default catalog and persists the value back
// to .trackplan/config.yaml.
func (c *Config) SetDefaultCatalog(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("config: catalog path is required")
	}
	c.Project.Catalog = path
	return c.saveProjectConfig()
}

// Table converts the windows block into a validated window.Table.
func (c *Config) Table() (window.Table, error) {
	return c.Project.Windows.table()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Windows: defaultWindowConfig(),
		Server:  ServerConfig{Host: DefaultServerHost, Port: DefaultServerPort},
	}
}

func defaultWindowConfig() WindowConfig {
	def := window.Default()
	return WindowConfig{
		MorningStart:      FormatClock(def.MorningStart),
		Lunch:             FormatClock(def.Lunch),
		AfternoonStart:    FormatClock(def.AfternoonStart),
		NetworkingStart:   FormatClock(def.NetworkingStart),
		NetworkingMinutes: def.NetworkingMinutes,
		Tracks:            def.Tracks,
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	def := defaultWindowConfig()
	w := &pc.Windows
	if strings.TrimSpace(w.MorningStart) == "" {
		w.MorningStart = def.MorningStart
	}
	if strings.TrimSpace(w.Lunch) == "" {
		w.Lunch = def.Lunch
	}
	if strings.TrimSpace(w.AfternoonStart) == "" {
		w.AfternoonStart = def.AfternoonStart
	}
	if strings.TrimSpace(w.NetworkingStart) == "" {
		w.NetworkingStart = def.NetworkingStart
	}
	if w.NetworkingMinutes == 0 {
		w.NetworkingMinutes = def.NetworkingMinutes
	}
	if w.Tracks == 0 {
		w.Tracks = def.Tracks
	}
	if strings.TrimSpace(pc.Server.Host) == "" {
		pc.Server.Host = DefaultServerHost
	}
	if pc.Server.Port == 0 {
		pc.Server.Port = DefaultServerPort
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Windows.MorningStart = strings.TrimSpace(pc.Windows.MorningStart)
	pc.Windows.Lunch = strings.TrimSpace(pc.Windows.Lunch)
	pc.Windows.AfternoonStart = strings.TrimSpace(pc.Windows.AfternoonStart)
	pc.Windows.NetworkingStart = strings.TrimSpace(pc.Windows.NetworkingStart)
	pc.Catalog = resolvePath(base, pc.Catalog)
	pc.Server.Host = strings.TrimSpace(pc.Server.Host)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if _, err := pc.Windows.table(); err != nil {
		return fmt.Errorf("windows: %w", err)
	}
	if !isValidPort(pc.Server.Port) {
		return fmt.Errorf("server.port %d out of range", pc.Server.Port)
	}
	return nil
}

func (w WindowConfig) table() (window.Table, error) {
	table := window.Table{NetworkingMinutes: w.NetworkingMinutes, Tracks: w.Tracks}
	fields := []struct {
		name  string
		value string
		dest  *int
	}{
		{"morning_start", w.MorningStart, &table.MorningStart},
		{"lunch", w.Lunch, &table.Lunch},
		{"afternoon_start", w.AfternoonStart, &table.AfternoonStart},
		{"networking_start", w.NetworkingStart, &table.NetworkingStart},
	}
	for _, f := range fields {
		minute, err := ParseClock(f.value)
		if err != nil {
			return window.Table{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dest = minute
	}
	if err := table.Validate(); err != nil {
		return window.Table{}, err
	}
	return table, nil
}

// ParseClock converts a 24-hour "HH:MM" string into minutes after midnight.
func ParseClock(value string) (int, error) {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("time %q must be HH:MM", value)
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("time %q has an invalid hour", value)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m > 59 || len(minutes) != 2 {
		return 0, fmt.Errorf("time %q has an invalid minute", value)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes after midnight as 24-hour "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure state dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
