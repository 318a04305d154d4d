package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverPg     = "pg"
	DriverSqlite = "sqlite"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpAddr       string        `yaml:"http_addr"`
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	Timezone       string        `yaml:"timezone"` // display time zone of post timestamps
	SessionTTL     time.Duration `yaml:"session_ttl"`
	SecureCookies  bool          `yaml:"secure_cookies"`
	AllowedOrigins []string      `yaml:"allowed_origins"`

	ThreadTitleMaxLen int `yaml:"thread_title_max_len"`
	PostTextMaxLen    int `yaml:"post_text_max_len"`
	NameMaxLen        int `yaml:"name_max_len"`

	// "name#secret" renders as "name ◆<code>"; off keeps names verbatim
	Tripcodes bool `yaml:"tripcodes"`

	// token bucket per client IP for thread/post creation
	CreateRate  float64 `yaml:"create_rate"`
	CreateBurst int     `yaml:"create_burst"`

	Storage    Storage     `yaml:"storage"`
	SeedBoards []SeedBoard `yaml:"seed_boards"`

	location *time.Location
}

type Storage struct {
	Driver     string `yaml:"driver"`
	MemoryPath string `yaml:"memory_path"` // empty keeps data in memory only
	SqlitePath string `yaml:"sqlite_path"`
	Redis      Redis  `yaml:"redis"`
	Pg         Pg     `yaml:"pg"`
}

type Redis struct {
	Addr      string `yaml:"addr"`
	DB        int    `yaml:"db"`
	Namespace string `yaml:"namespace"`
}

type Pg struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Dbname string `yaml:"dbname"`
}

type SeedBoard struct {
	Id          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Private struct {
	JwtKey        string `yaml:"jwt_key"`
	TripcodeSalt  string `yaml:"tripcode_salt"`
	PgPassword    string `yaml:"pg_password"`
	RedisPassword string `yaml:"redis_password"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

// TripcodeSalt is the tripcode key, or "" when tripcodes are disabled.
func (c *Config) TripcodeSalt() string {
	if !c.Public.Tripcodes {
		return ""
	}
	return c.Private.TripcodeSalt
}

// Location is the parsed display time zone.
func (p *Public) Location() *time.Location {
	if p.location == nil {
		return time.UTC
	}
	return p.location
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, applies
// environment overrides and defaults, and panics if the result is invalid.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TEXTBOARD_JWT_KEY"); v != "" {
		c.Private.JwtKey = v
	}
	if v := os.Getenv("TEXTBOARD_TRIPCODE_SALT"); v != "" {
		c.Private.TripcodeSalt = v
	}
	if v := os.Getenv("TEXTBOARD_PG_PASSWORD"); v != "" {
		c.Private.PgPassword = v
	}
	if v := os.Getenv("TEXTBOARD_REDIS_PASSWORD"); v != "" {
		c.Private.RedisPassword = v
	}
	if v := os.Getenv("TEXTBOARD_STORAGE_DRIVER"); v != "" {
		c.Public.Storage.Driver = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Public.HttpAddr = ":" + v
	}
}

func (c *Config) applyDefaults() {
	p := &c.Public
	if p.HttpAddr == "" {
		p.HttpAddr = ":8080"
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.Timezone == "" {
		p.Timezone = "Asia/Tokyo"
	}
	if p.SessionTTL == 0 {
		p.SessionTTL = 24 * time.Hour
	}
	if p.CreateRate == 0 {
		p.CreateRate = 1
	}
	if p.CreateBurst == 0 {
		p.CreateBurst = 3
	}
	if p.Storage.Redis.Namespace == "" {
		p.Storage.Redis.Namespace = "textboard:"
	}
	p.Storage.Driver = strings.ToLower(p.Storage.Driver)
}

func (c *Config) validate() error {
	p := &c.Public
	if c.Private.JwtKey == "" {
		return fmt.Errorf("jwt_key is required")
	}
	if p.ThreadTitleMaxLen <= 0 || p.PostTextMaxLen <= 0 || p.NameMaxLen <= 0 {
		return fmt.Errorf("thread_title_max_len, post_text_max_len and name_max_len must be positive")
	}

	if p.Tripcodes && c.Private.TripcodeSalt == "" {
		return fmt.Errorf("tripcode_salt is required when tripcodes are enabled")
	}

	switch p.Storage.Driver {
	case DriverMemory:
	case DriverRedis:
		if p.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for redis driver")
		}
	case DriverPg:
		if p.Storage.Pg.Host == "" || p.Storage.Pg.Dbname == "" {
			return fmt.Errorf("storage.pg.host and storage.pg.dbname are required for pg driver")
		}
	case DriverSqlite:
		if p.Storage.SqlitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for sqlite driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", p.Storage.Driver)
	}

	seen := make(map[string]struct{}, len(p.SeedBoards))
	for _, b := range p.SeedBoards {
		if b.Id == "" || strings.ContainsAny(b.Id, ":_ ") {
			return fmt.Errorf("seed board id %q must be a non-empty slug without ':', '_' or spaces", b.Id)
		}
		if _, dup := seen[b.Id]; dup {
			return fmt.Errorf("duplicate seed board id %q", b.Id)
		}
		seen[b.Id] = struct{}{}
	}

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	p.location = loc
	return nil
}
