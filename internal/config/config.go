package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/sydlexius/siteassets/internal/logging"
)

// Config holds all generator configuration.
type Config struct {
	Output       OutputConfig  `yaml:"output"`
	Brand        BrandConfig   `yaml:"brand"`
	Fonts        FontsConfig   `yaml:"fonts"`
	MissingIcons []IconPair    `yaml:"missing_icons"`
	Cards        []CardConfig  `yaml:"cards"`
	Logging      LoggingConfig `yaml:"logging"`
	Watch        WatchConfig   `yaml:"watch"`
}

// OutputConfig holds the directories generators write into.
type OutputConfig struct {
	IconsDir  string `yaml:"icons_dir"`
	ImagesDir string `yaml:"images_dir"`
}

// BrandConfig holds the colors shared by the procedural images.
type BrandConfig struct {
	GradientStart string `yaml:"gradient_start"`
	GradientEnd   string `yaml:"gradient_end"`
	Text          string `yaml:"text"`
	Accent        string `yaml:"accent"`
	Name          string `yaml:"name"`
	SiteURL       string `yaml:"site_url"`
}

// FontsConfig lists candidate font files, tried in order.
type FontsConfig struct {
	Text  []string `yaml:"text"`
	Bold  []string `yaml:"bold"`
	Emoji []string `yaml:"emoji"`
}

// IconPair maps a missing icon name to the existing file it is copied from.
type IconPair struct {
	Target string `yaml:"target"`
	Source string `yaml:"source"`
}

// CardConfig describes one procedurally drawn image.
type CardConfig struct {
	Name   string       `yaml:"name"`
	Width  int          `yaml:"width"`
	Height int          `yaml:"height"`
	Band   *BandConfig  `yaml:"band,omitempty"`
	Mark   MarkConfig   `yaml:"mark"`
	Lines  []LineConfig `yaml:"lines"`
}

// BandConfig is the translucent strip behind the text.
type BandConfig struct {
	Top    int   `yaml:"top"`
	Bottom int   `yaml:"bottom"`
	Alpha  uint8 `yaml:"alpha"`
}

// MarkConfig places the rocket mark. X of zero means horizontally centered.
type MarkConfig struct {
	X          int     `yaml:"x"`
	Y          int     `yaml:"y"`
	Size       float64 `yaml:"size"`
	Scale      float64 `yaml:"scale"`
	Color      string  `yaml:"color"`
	DiscRadius int     `yaml:"disc_radius"`
	DiscColor  string  `yaml:"disc_color"`
}

// LineConfig is one centered line of text.
type LineConfig struct {
	Text string  `yaml:"text"`
	Size float64 `yaml:"size"`
	Y    int     `yaml:"y"`
	Bold bool    `yaml:"bold"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level          string `yaml:"level"`
	Format         string `yaml:"format"`
	FilePath       string `yaml:"file_path"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxFiles   int    `yaml:"file_max_files"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// DefaultPath is used when neither -config nor SA_CONFIG_PATH is set.
const DefaultPath = "siteassets.yaml"

// Default returns the Port Keeper site configuration.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			IconsDir:  filepath.Join("website", "assets", "icons"),
			ImagesDir: filepath.Join("website", "images"),
		},
		Brand: BrandConfig{
			GradientStart: "#667eea",
			GradientEnd:   "#764ba2",
			Text:          "#ffffff",
			Accent:        "#667eea",
			Name:          "Port Keeper",
			SiteURL:       "/",
		},
		Fonts: FontsConfig{
			Text: []string{
				"/System/Library/Fonts/Helvetica.ttc",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				`C:\Windows\Fonts\arial.ttf`,
			},
			Bold: []string{
				"/System/Library/Fonts/Helvetica.ttc",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				`C:\Windows\Fonts\arialbd.ttf`,
			},
			Emoji: []string{
				"/System/Library/Fonts/Apple Color Emoji.ttc",
				"/usr/share/fonts/truetype/noto/NotoEmoji-Regular.ttf",
				`C:\Windows\Fonts\seguiemj.ttf`,
			},
		},
		MissingIcons: []IconPair{
			{Target: "icon-72x72.png", Source: "apple-touch-icon.png"},
			{Target: "icon-96x96.png", Source: "apple-touch-icon.png"},
			{Target: "icon-128x128.png", Source: "apple-touch-icon.png"},
			{Target: "icon-144x144.png", Source: "apple-touch-icon.png"},
			{Target: "icon-152x152.png", Source: "apple-touch-icon.png"},
			{Target: "icon-384x384.png", Source: "android-chrome-512x512.png"},
			{Target: "mstile-150x150.png", Source: "apple-touch-icon.png"},
		},
		Cards: DefaultCards(),
		Logging: defaultLogging(),
		Watch: WatchConfig{
			Debounce:    500 * time.Millisecond,
			MinInterval: 2 * time.Second,
		},
	}
}

func defaultLogging() LoggingConfig {
	lc := logging.DefaultConfig()
	return LoggingConfig{
		Level:          lc.Level,
		Format:         lc.Format,
		FileMaxSizeMB:  lc.FileMaxSizeMB,
		FileMaxFiles:   lc.FileMaxFiles,
		FileMaxAgeDays: lc.FileMaxAgeDays,
	}
}

// DefaultCards returns the Open Graph, Twitter and logo images.
func DefaultCards() []CardConfig {
	return []CardConfig{
		{
			Name:   "og-image",
			Width:  1200,
			Height: 630,
			Band:   &BandConfig{Top: 200, Bottom: 430, Alpha: 100},
			Mark:   MarkConfig{Y: 150, Size: 72, Scale: 1, Color: "#ffffff"},
			Lines: []LineConfig{
				{Text: "Port Keeper", Size: 72, Y: 280, Bold: true},
				{Text: "The Ultimate Port Management Tool", Size: 36, Y: 360},
				{Text: "for Developers", Size: 36, Y: 410},
			},
		},
		{
			Name:   "twitter-card",
			Width:  1200,
			Height: 600,
			Band:   &BandConfig{Top: 180, Bottom: 420, Alpha: 100},
			Mark:   MarkConfig{Y: 140, Size: 72, Scale: 1, Color: "#ffffff"},
			Lines: []LineConfig{
				{Text: "Port Keeper", Size: 72, Y: 270, Bold: true},
				{Text: "Manage Development Ports Effortlessly", Size: 36, Y: 350},
				{Text: "CLI & GUI • Free • Open Source", Size: 36, Y: 400},
			},
		},
		{
			Name:   "logo",
			Width:  512,
			Height: 512,
			Mark: MarkConfig{
				Y:          256,
				Size:       200,
				Scale:      2,
				Color:      "#667eea",
				DiscRadius: 150,
				DiscColor:  "#ffffff",
			},
		},
	}
}

// ResolvePath picks the config file path: explicit flag, then SA_CONFIG_PATH,
// then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("SA_CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("SA_ICONS_DIR"); v != "" {
		c.Output.IconsDir = v
	}
	if v := os.Getenv("SA_IMAGES_DIR"); v != "" {
		c.Output.ImagesDir = v
	}
	if v := os.Getenv("SA_GRADIENT_START"); v != "" {
		c.Brand.GradientStart = v
	}
	if v := os.Getenv("SA_GRADIENT_END"); v != "" {
		c.Brand.GradientEnd = v
	}
	if v := os.Getenv("SA_FONT_TEXT"); v != "" {
		c.Fonts.Text = filepath.SplitList(v)
	}
	if v := os.Getenv("SA_FONT_BOLD"); v != "" {
		c.Fonts.Bold = filepath.SplitList(v)
	}
	if v := os.Getenv("SA_FONT_EMOJI"); v != "" {
		c.Fonts.Emoji = filepath.SplitList(v)
	}
	if v := os.Getenv("SA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SA_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("SA_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Output.IconsDir) == "" {
		return fmt.Errorf("output.icons_dir is required")
	}
	if strings.TrimSpace(c.Output.ImagesDir) == "" {
		return fmt.Errorf("output.images_dir is required")
	}

	for key, hex := range map[string]string{
		"brand.gradient_start": c.Brand.GradientStart,
		"brand.gradient_end":   c.Brand.GradientEnd,
		"brand.text":           c.Brand.Text,
		"brand.accent":         c.Brand.Accent,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("invalid color %s=%q", key, hex)
		}
	}

	seen := make(map[string]bool, len(c.MissingIcons))
	for i, p := range c.MissingIcons {
		if p.Target == "" || p.Source == "" {
			return fmt.Errorf("missing_icons[%d]: target and source are required", i)
		}
		if seen[p.Target] {
			return fmt.Errorf("missing_icons[%d]: duplicate target %q", i, p.Target)
		}
		seen[p.Target] = true
	}

	names := make(map[string]bool, len(c.Cards))
	for i, card := range c.Cards {
		if err := card.validate(); err != nil {
			return fmt.Errorf("cards[%d]: %w", i, err)
		}
		if names[card.Name] {
			return fmt.Errorf("cards[%d]: duplicate name %q", i, card.Name)
		}
		names[card.Name] = true
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	if c.Logging.FileMaxSizeMB < 0 || c.Logging.FileMaxFiles < 0 || c.Logging.FileMaxAgeDays < 0 {
		return fmt.Errorf("logging file limits must not be negative")
	}

	if c.Watch.Debounce < 0 || c.Watch.MinInterval < 0 {
		return fmt.Errorf("watch durations must not be negative")
	}
	return nil
}

func (cc CardConfig) validate() error {
	if cc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(cc.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", cc.Name)
	}
	if cc.Width <= 0 || cc.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", cc.Width, cc.Height)
	}
	if b := cc.Band; b != nil {
		if b.Top < 0 || b.Bottom > cc.Height || b.Top >= b.Bottom {
			return fmt.Errorf("band %d..%d outside 0..%d", b.Top, b.Bottom, cc.Height)
		}
	}
	if cc.Mark.Color != "" {
		if _, err := colorful.Hex(cc.Mark.Color); err != nil {
			return fmt.Errorf("invalid mark color %q", cc.Mark.Color)
		}
	}
	if cc.Mark.DiscRadius > 0 {
		if _, err := colorful.Hex(cc.Mark.DiscColor); err != nil {
			return fmt.Errorf("invalid disc color %q", cc.Mark.DiscColor)
		}
	}
	for j, l := range cc.Lines {
		if l.Size <= 0 {
			return fmt.Errorf("lines[%d]: size must be positive", j)
		}
	}
	return nil
}
