package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"pong/world"
)

type ServerConfig struct {
	Address     string `toml:"address"`
	TickRate    int    `toml:"tick_rate"`
	ResyncTicks int    `toml:"resync_ticks"`
	QueueSize   int    `toml:"queue_size"`
}

type ClientConfig struct {
	URL         string `toml:"url"`
	MaxAttempts int    `toml:"max_attempts"`
	BaseDelayMS int    `toml:"base_delay_ms"`
	MaxDelayMS  int    `toml:"max_delay_ms"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
	Geometry world.Geometry `toml:"geometry"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:     "localhost:8085",
			TickRate:    60,
			ResyncTicks: 25,
			QueueSize:   64,
		},
		Client: ClientConfig{
			URL:         "ws://localhost:8085",
			MaxAttempts: 5,
			BaseDelayMS: 1000,
			MaxDelayMS:  30000,
		},
		Geometry: world.DefaultGeometry(),
	}
}

// ReadTOML layers fileName over the defaults. A missing file is not an error.
func ReadTOML(fileName string) (*Config, error) {
	config := DefaultConfig()
	file, err := os.ReadFile(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return &config, nil
	}
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return &config, nil
}

// LoadEnv reads .env if present, then applies PONG_* overrides.
func (c *Config) LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if v := os.Getenv("PONG_ADDRESS"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("PONG_URL"); v != "" {
		c.Client.URL = v
	}
	for name, dst := range map[string]*int{
		"PONG_TICK_RATE":    &c.Server.TickRate,
		"PONG_RESYNC_TICKS": &c.Server.ResyncTicks,
		"PONG_MAX_ATTEMPTS": &c.Client.MaxAttempts,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	switch {
	case c.Server.TickRate <= 0:
		return fmt.Errorf("server.tick_rate must be positive, got %d", c.Server.TickRate)
	case c.Server.ResyncTicks <= 0:
		return fmt.Errorf("server.resync_ticks must be positive, got %d", c.Server.ResyncTicks)
	case c.Server.QueueSize <= 0:
		return fmt.Errorf("server.queue_size must be positive, got %d", c.Server.QueueSize)
	case c.Client.MaxAttempts < 0:
		return fmt.Errorf("client.max_attempts must not be negative, got %d", c.Client.MaxAttempts)
	case c.Client.BaseDelayMS <= 0 || c.Client.MaxDelayMS < c.Client.BaseDelayMS:
		return fmt.Errorf("client delays %dms..%dms are invalid", c.Client.BaseDelayMS, c.Client.MaxDelayMS)
	}
	return nil
}

func AlmostEqual(a, b, threshold float64) bool {
	return math.Abs(a-b) <= threshold
}
