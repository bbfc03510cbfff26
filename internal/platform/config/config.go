package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type LoanConfig struct {
	PeriodDays       int `yaml:"period_days"`
	ExpiringSoonDays int `yaml:"expiring_soon_days"`
	DueSoonDays      int `yaml:"due_soon_days"`
}

type Config struct {
	Mode string         `yaml:"mode"`
	DB   DatabaseConfig `yaml:"database"`
	Loan LoanConfig     `yaml:"loan"`
}

func Default() Config {
	return Config{
		Mode: "release",
		DB: DatabaseConfig{
			Host:   "127.0.0.1",
			Port:   3306,
			DBName: "controle_epi",
		},
		Loan: LoanConfig{
			PeriodDays:       30,
			ExpiringSoonDays: 30,
			DueSoonDays:      7,
		},
	}
}

// Load reads the YAML file at path on top of Default. A .env file next to the
// working directory is loaded first so ${VAR} references in the YAML resolve.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] .env not loaded: %v", err)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(buf)
}

// envRef matches ${VAR}. Bare $ is left alone so literal passwords survive.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(buf []byte) []byte {
	return envRef.ReplaceAllFunc(buf, func(m []byte) []byte {
		return []byte(os.Getenv(string(envRef.FindSubmatch(m)[1])))
	})
}

// Parse decodes a YAML config over Default(). Only ${VAR} references are expanded.
func Parse(buf []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(expandEnv(buf), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("config: mode must be dev or release, got %q", c.Mode)
	}
	if c.DB.Host == "" || c.DB.DBName == "" {
		return errors.New("config: database.host and database.dbname are required")
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		return fmt.Errorf("config: database.port out of range: %d", c.DB.Port)
	}
	if c.Loan.PeriodDays <= 0 {
		return fmt.Errorf("config: loan.period_days must be positive, got %d", c.Loan.PeriodDays)
	}
	if c.Loan.ExpiringSoonDays < 0 || c.Loan.DueSoonDays < 0 {
		return errors.New("config: loan windows must not be negative")
	}
	return nil
}
