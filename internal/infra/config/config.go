package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Cache     CacheSettings     `mapstructure:"cache"`
}

type AppSettings struct {
	Name               string   `mapstructure:"name"`
	Env                string   `mapstructure:"env"`
	Host               string   `mapstructure:"host"`
	Port               int      `mapstructure:"port"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	DB              int    `mapstructure:"db"`
	Password        string `mapstructure:"password"`
	TLSEnabled      bool   `mapstructure:"tls_enabled"`
	RateLimitPrefix string `mapstructure:"rate_limit_prefix"`
	CachePrefix     string `mapstructure:"cache_prefix"`
}

// KafkaSettings configures the Kafka producer
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

type TelemetrySettings struct {
	MetricsPort int    `mapstructure:"metrics_port"`
	ServiceName string `mapstructure:"service_name"`
}

// OperationLimit holds sliding-window quotas for one named operation. A zero
// quota disables the corresponding scope.
type OperationLimit struct {
	PerUser int           `mapstructure:"per_user"`
	PerIP   int           `mapstructure:"per_ip"`
	PerPair int           `mapstructure:"per_pair"`
	Window  time.Duration `mapstructure:"window"`
}

// RateLimitSettings is the single source of truth for quotas. Operations are
// enumerated here rather than hard-coded at call sites so deployments can
// retune them per environment.
type RateLimitSettings struct {
	ProfileUpdate     OperationLimit `mapstructure:"profile_update"`
	ProjectCreate     OperationLimit `mapstructure:"project_create"`
	ProjectUpdate     OperationLimit `mapstructure:"project_update"`
	ProjectDelete     OperationLimit `mapstructure:"project_delete"`
	InteractionToggle OperationLimit `mapstructure:"interaction_toggle"`
	InvitationSend    OperationLimit `mapstructure:"invitation_send"`
	InvitationRespond OperationLimit `mapstructure:"invitation_respond"`
	APIGlobal         OperationLimit `mapstructure:"api_global"`
}

// Operations returns the enumerated quota table keyed by operation name.
func (s RateLimitSettings) Operations() map[string]OperationLimit {
	return map[string]OperationLimit{
		"profile.update":     s.ProfileUpdate,
		"project.create":     s.ProjectCreate,
		"project.update":     s.ProjectUpdate,
		"project.delete":     s.ProjectDelete,
		"interaction.toggle": s.InteractionToggle,
		"invitation.send":    s.InvitationSend,
		"invitation.respond": s.InvitationRespond,
		"api.global":         s.APIGlobal,
	}
}

// CacheSettings holds per-entity TTLs for the read-through cache.
type CacheSettings struct {
	ProfileTTL     time.Duration `mapstructure:"profile_ttl"`
	ProjectTTL     time.Duration `mapstructure:"project_ttl"`
	ListingTTL     time.Duration `mapstructure:"listing_ttl"`
	StatsTTL       time.Duration `mapstructure:"stats_ttl"`
	InteractionTTL time.Duration `mapstructure:"interaction_ttl"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("MATCHME")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.cors_allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.rate_limit_prefix",
		"redis.cache_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"telemetry.metrics_port",
		"telemetry.service_name",
		"rate_limit.profile_update.per_user",
		"rate_limit.profile_update.per_ip",
		"rate_limit.profile_update.window",
		"rate_limit.project_create.per_user",
		"rate_limit.project_create.per_ip",
		"rate_limit.project_create.window",
		"rate_limit.project_update.per_user",
		"rate_limit.project_update.per_ip",
		"rate_limit.project_update.window",
		"rate_limit.project_delete.per_user",
		"rate_limit.project_delete.per_ip",
		"rate_limit.project_delete.window",
		"rate_limit.interaction_toggle.per_user",
		"rate_limit.interaction_toggle.per_ip",
		"rate_limit.interaction_toggle.per_pair",
		"rate_limit.interaction_toggle.window",
		"rate_limit.invitation_send.per_user",
		"rate_limit.invitation_send.per_ip",
		"rate_limit.invitation_send.per_pair",
		"rate_limit.invitation_send.window",
		"rate_limit.invitation_respond.per_user",
		"rate_limit.invitation_respond.per_ip",
		"rate_limit.invitation_respond.window",
		"rate_limit.api_global.per_ip",
		"rate_limit.api_global.window",
		"cache.profile_ttl",
		"cache.project_ttl",
		"cache.listing_ttl",
		"cache.stats_ttl",
		"cache.interaction_ttl",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "matchme-platform")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.cors_allowed_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "matchme")
	v.SetDefault("postgres.password", "matchme_password")
	v.SetDefault("postgres.database", "matchme")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.rate_limit_prefix", "matchme:ratelimit")
	v.SetDefault("redis.cache_prefix", "matchme:cache")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "social")
	v.SetDefault("kafka.async", true)

	v.SetDefault("telemetry.metrics_port", 9090)
	v.SetDefault("telemetry.service_name", "matchme-platform")

	// Quota table defaults. Windows are trailing sliding windows.
	v.SetDefault("rate_limit.profile_update.per_user", 10)
	v.SetDefault("rate_limit.profile_update.per_ip", 20)
	v.SetDefault("rate_limit.profile_update.window", "10m")
	v.SetDefault("rate_limit.project_create.per_user", 5)
	v.SetDefault("rate_limit.project_create.per_ip", 10)
	v.SetDefault("rate_limit.project_create.window", "10m")
	v.SetDefault("rate_limit.project_update.per_user", 15)
	v.SetDefault("rate_limit.project_update.per_ip", 30)
	v.SetDefault("rate_limit.project_update.window", "10m")
	v.SetDefault("rate_limit.project_delete.per_user", 5)
	v.SetDefault("rate_limit.project_delete.per_ip", 10)
	v.SetDefault("rate_limit.project_delete.window", "10m")
	v.SetDefault("rate_limit.interaction_toggle.per_user", 30)
	v.SetDefault("rate_limit.interaction_toggle.per_ip", 60)
	v.SetDefault("rate_limit.interaction_toggle.per_pair", 10)
	v.SetDefault("rate_limit.interaction_toggle.window", "10m")
	v.SetDefault("rate_limit.invitation_send.per_user", 10)
	v.SetDefault("rate_limit.invitation_send.per_ip", 20)
	v.SetDefault("rate_limit.invitation_send.per_pair", 3)
	v.SetDefault("rate_limit.invitation_send.window", "10m")
	v.SetDefault("rate_limit.invitation_respond.per_user", 20)
	v.SetDefault("rate_limit.invitation_respond.per_ip", 40)
	v.SetDefault("rate_limit.invitation_respond.window", "10m")
	v.SetDefault("rate_limit.api_global.per_ip", 300)
	v.SetDefault("rate_limit.api_global.window", "1m")

	// Short TTLs: aggregates tolerate at most a couple minutes of staleness.
	v.SetDefault("cache.profile_ttl", "10m")
	v.SetDefault("cache.project_ttl", "10m")
	v.SetDefault("cache.listing_ttl", "5m")
	v.SetDefault("cache.stats_ttl", "2m")
	v.SetDefault("cache.interaction_ttl", "5m")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "MATCHME_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
