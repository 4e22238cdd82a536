package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"p1812go/pkg/p1812"
)

// Config holds a propagation job and the application settings around it.
type Config struct {
	Link    LinkConfig    `yaml:"link"`
	Job     JobConfig     `yaml:"job"`
	Data    DataConfig    `yaml:"data"`
	Output  OutputConfig  `yaml:"output"`
	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// LinkConfig holds the radio link and climate parameters.
type LinkConfig struct {
	Frequency    float64  `yaml:"frequency_ghz"`
	Percent      float64  `yaml:"time_percent"`
	TxHeight     Distance `yaml:"tx_height"`
	RxHeight     Distance `yaml:"rx_height"`
	Polarization string   `yaml:"polarization"`
	Zone         string   `yaml:"zone"`
	StreetWidth  Distance `yaml:"street_width"`
	Lat          float64  `yaml:"lat"`
	Lon          float64  `yaml:"lon"`
	N0           float64  `yaml:"n0"`
	DN           float64  `yaml:"dn"`
	Omega        float64  `yaml:"omega"`
	CoastTx      Distance `yaml:"coast_distance_tx"`
	CoastRx      Distance `yaml:"coast_distance_rx"`
	LocationPct  float64  `yaml:"location_percent"`
	LocationStd  float64  `yaml:"location_sigma_db"`
}

// Coordinate is a projected grid position in metres.
type Coordinate struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// JobConfig describes what to compute. A job with an rx coordinate is a
// point-to-point run, otherwise it sweeps the area around tx.
type JobConfig struct {
	Name       string      `yaml:"name"`
	Tx         Coordinate  `yaml:"tx"`
	Rx         *Coordinate `yaml:"rx,omitempty"`
	TxPower    float64     `yaml:"tx_power_w"`
	TxGain     float64     `yaml:"tx_gain_dbi"`
	RxGain     float64     `yaml:"rx_gain_dbi"`
	Radius     Distance    `yaml:"radius"`
	Resolution Distance    `yaml:"resolution"`
	AngularRes float64     `yaml:"angular_resolution_deg"`
	Threads    int         `yaml:"threads"`
	DataType   string      `yaml:"data_type"`
	SUnitScale string      `yaml:"s_unit_scale"`
}

// DataConfig points at the terrain and clutter grids.
type DataConfig struct {
	Terrain       string   `yaml:"terrain"`
	TerrainMethod string   `yaml:"terrain_interpolation"`
	Clutter       string   `yaml:"clutter"`
	ClutterMethod string   `yaml:"clutter_interpolation"`
	ClutterUnit   Distance `yaml:"clutter_unit"`
	Cache         bool     `yaml:"cache"`
}

// OutputConfig holds sweep output settings.
type OutputConfig struct {
	RF       string  `yaml:"rf"`
	Image    string  `yaml:"image"`
	Size     int     `yaml:"image_size"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	Colormap string  `yaml:"colormap"`
	Value    string  `yaml:"value"`
}

// StoreConfig holds run history settings.
type StoreConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Path      string   `yaml:"path"`
	Retention Duration `yaml:"retention"`
}

// MetricsConfig holds the Prometheus textfile export path. Empty disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	p := p1812.DefaultParams()
	return &Config{
		Link: LinkConfig{
			Frequency:    0.145,
			Percent:      p.Percent,
			TxHeight:     Distance(10),
			RxHeight:     Distance(2),
			Polarization: p.Polarization.String(),
			Zone:         p.Zone.String(),
			StreetWidth:  Distance(p.StreetWidth),
			Lat:          51.5,
			Lon:          -0.1,
			N0:           p.N0,
			DN:           p.DN,
			Omega:        p.Omega,
			CoastTx:      Distance(p.Dct * 1000),
			CoastRx:      Distance(p.Dcr * 1000),
			LocationPct:  p.LocationPercent,
			LocationStd:  p.LocationSigma,
		},
		Job: JobConfig{
			Name:       "coverage",
			TxPower:    5,
			Radius:     Distance(25000),
			Resolution: Distance(100),
			AngularRes: 0.5,
			Threads:    1,
			DataType:   "loss",
			SUnitScale: "vhf",
		},
		Data: DataConfig{
			Terrain:       "./data/terrain.xyz",
			TerrainMethod: "bicubic",
			ClutterMethod: "bilinear",
			ClutterUnit:   Distance(0.1), // decimetres
			Cache:         true,
		},
		Output: OutputConfig{
			RF:       "./out/coverage.rf",
			Image:    "./out/coverage.png",
			Size:     1024,
			Min:      80,
			Max:      180,
			Colormap: "jet",
			Value:    "loss",
		},
		Store: StoreConfig{
			Enabled:   true,
			Path:      "./data/p1812.db",
			Retention: Duration(30 * Day),
		},
		Log: LogConfig{
			Path:       "./logs/p1812.log",
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Params converts the link section into calculation parameters.
func (l *LinkConfig) Params() (p1812.Params, error) {
	pol, err := p1812.ParsePolarization(l.Polarization)
	if err != nil {
		return p1812.Params{}, err
	}
	zone, err := p1812.ParseZone(l.Zone)
	if err != nil {
		return p1812.Params{}, err
	}
	return p1812.Params{
		Frequency:       l.Frequency,
		Percent:         l.Percent,
		Htg:             float64(l.TxHeight),
		Hrg:             float64(l.RxHeight),
		Polarization:    pol,
		Zone:            zone,
		StreetWidth:     float64(l.StreetWidth),
		Lon:             l.Lon,
		Lat:             l.Lat,
		N0:              l.N0,
		DN:              l.DN,
		Omega:           l.Omega,
		Dct:             float64(l.CoastTx) / 1000,
		Dcr:             float64(l.CoastRx) / 1000,
		LocationPercent: l.LocationPct,
		LocationSigma:   l.LocationStd,
	}, nil
}

// IsPointToPoint reports whether the job names a receiver.
func (j *JobConfig) IsPointToPoint() bool {
	return j.Rx != nil
}

// Validate checks the settings that Load cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Link.Params(); err != nil {
		return fmt.Errorf("link: %w", err)
	}
	if c.Job.Threads < 1 {
		return fmt.Errorf("job: threads must be at least 1, got %d", c.Job.Threads)
	}
	if c.Data.Terrain == "" {
		return errors.New("data: terrain file is required")
	}
	if c.Data.Clutter != "" && c.Data.ClutterUnit <= 0 {
		return fmt.Errorf("data: clutter_unit must be positive, got %v", float64(c.Data.ClutterUnit))
	}
	return nil
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, defaults are merged under it and nothing is written back.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from the environment. Overrides are never saved.
func applyEnv(cfg *Config) error {
	if s := os.Getenv("P1812_THREADS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid P1812_THREADS %q: %w", s, err)
		}
		cfg.Job.Threads = n
	}
	return nil
}

var windowsEnv = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// ExpandPath expands $VAR, ${VAR} and %VAR% references.
func ExpandPath(p string) string {
	p = windowsEnv.ReplaceAllStringFunc(p, func(m string) string {
		return os.Getenv(m[1 : len(m)-1])
	})
	return os.ExpandEnv(p)
}

func (c *Config) expandPaths() {
	for _, p := range []*string{
		&c.Data.Terrain, &c.Data.Clutter,
		&c.Output.RF, &c.Output.Image,
		&c.Store.Path, &c.Metrics.Textfile, &c.Log.Path,
	} {
		*p = ExpandPath(*p)
	}
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# P.1812 Job Configuration
# ------------------------
# Omit job.rx for a point-to-area sweep around job.tx.
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles), ft (feet)

`)
	data = append(header, data...)

	// Option hints for enum fields, placed above the key at its indentation.
	hints := []struct{ key, hint string }{
		{"polarization", "horizontal, vertical"},
		{"zone", "coastal, inland, sea"},
		{"data_type", "loss, terrain, clutter"},
		{"s_unit_scale", "hf, vhf"},
		{"terrain_interpolation", "nearest, bilinear, bicubic"},
		{"clutter_interpolation", "nearest, bilinear, bicubic"},
		{"colormap", "jet, gray"},
		{"value", "loss, rx_dbm"},
	}
	for _, h := range hints {
		re := regexp.MustCompile(`(?m)^(\s+)` + h.key + `:`)
		data = re.ReplaceAll(data, []byte("${1}# Options: "+h.hint+"\n${1}"+h.key+":"))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}

// RetentionPeriod returns the history retention as a time.Duration.
func (s StoreConfig) RetentionPeriod() time.Duration {
	return time.Duration(s.Retention)
}
