package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultGenerations = 5
	MaxGenerations     = 10
	// techo de MAX_GENERATIONS: 12 generaciones son hasta 8190 ancestros por árbol
	GenerationsCeiling = 12
)

type Neo4j struct {
	URI      string
	User     string
	Password string
	Database string
}

type Config struct {
	Port string

	// Vacío => storage in-memory.
	DBDSN string
	Neo4j Neo4j

	// Vacío => cache local (go-cache).
	RedisAddr string
	CacheTTL  time.Duration

	GenotypeAPIURL string
	GenotypeAPIKey string

	LogLevel  string
	LogFormat string
	AppName   string

	DefaultGenerations int
	MaxGenerations     int

	BreedKnowledgeFile string
}

// Load lee env vars (PORT, DB_DSN, NEO4J_URI, ...) y opcionalmente un YAML
// indicado por CONFIG_FILE. Env siempre gana sobre el archivo.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("neo4j.user", "neo4j")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("app.name", "pedigree-genetics")
	v.SetDefault("default.generations", DefaultGenerations)
	v.SetDefault("max.generations", MaxGenerations)

	if file := strings.TrimSpace(v.GetString("config.file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	cfg := Config{
		Port:  strings.TrimSpace(v.GetString("port")),
		DBDSN: strings.TrimSpace(v.GetString("db.dsn")),
		Neo4j: Neo4j{
			URI:      strings.TrimSpace(v.GetString("neo4j.uri")),
			User:     strings.TrimSpace(v.GetString("neo4j.user")),
			Password: v.GetString("neo4j.password"),
			Database: strings.TrimSpace(v.GetString("neo4j.database")),
		},
		RedisAddr:          strings.TrimSpace(v.GetString("redis.addr")),
		CacheTTL:           v.GetDuration("cache.ttl"),
		GenotypeAPIURL:     strings.TrimSpace(v.GetString("genotype.api.url")),
		GenotypeAPIKey:     strings.TrimSpace(v.GetString("genotype.api.key")),
		LogLevel:           v.GetString("log.level"),
		LogFormat:          v.GetString("log.format"),
		AppName:            v.GetString("app.name"),
		DefaultGenerations: v.GetInt("default.generations"),
		MaxGenerations:     v.GetInt("max.generations"),
		BreedKnowledgeFile: strings.TrimSpace(v.GetString("breed.knowledge.file")),
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default devuelve la config de desarrollo (todo in-memory).
func Default() Config {
	cfg := Config{
		Port:               "8080",
		CacheTTL:           5 * time.Minute,
		LogLevel:           "info",
		LogFormat:          "text",
		AppName:            "pedigree-genetics",
		DefaultGenerations: DefaultGenerations,
		MaxGenerations:     MaxGenerations,
	}
	_ = cfg.normalize()
	return cfg
}

func (c *Config) normalize() error {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.MaxGenerations <= 0 {
		c.MaxGenerations = MaxGenerations
	}
	if c.DefaultGenerations <= 0 {
		c.DefaultGenerations = DefaultGenerations
	}
	if c.MaxGenerations > GenerationsCeiling {
		return fmt.Errorf("config: MAX_GENERATIONS (%d) exceeds the supported ceiling (%d)", c.MaxGenerations, GenerationsCeiling)
	}
	if c.DefaultGenerations > c.MaxGenerations {
		return fmt.Errorf("config: DEFAULT_GENERATIONS (%d) exceeds MAX_GENERATIONS (%d)", c.DefaultGenerations, c.MaxGenerations)
	}
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}
