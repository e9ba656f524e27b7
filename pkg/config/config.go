package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App             AppConfig
	Service         ServiceConfig
	DB              DBConfig
	Redis           RedisConfig
	JWT             JWTConfig
	Password        PasswordConfig
	AuthRateLimit   AuthRateLimitConfig
	PublicRateLimit PublicRateLimitConfig
	Session         SessionConfig
	FeatureFlags    FeatureFlagsConfig
	Storage         StorageConfig
	GoogleMaps      GoogleMapsConfig
	GCP             GCPConfig
	GCS             GCSConfig
	Media           MediaConfig
	PubSub          PubSubConfig
	BigQuery        BigQueryConfig
	Cache           CacheConfig
	Cron            CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.RefreshTokenTTL() > 0 && c.JWT.RefreshTokenTTL() <= c.JWT.AccessTokenTTL() {
		return fmt.Errorf("%s must exceed %s", EnvRefreshTokenTTLMinutes, EnvJWTExpMins)
	}
	switch c.Storage.Driver {
	case StorageDriverGCS:
		if c.GCS.BucketName == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvGCSBucket, EnvStorageDriver, StorageDriverGCS)
		}
	case StorageDriverLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvStorageLocalDir, EnvStorageDriver, StorageDriverLocal)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}
	if _, err := c.App.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if len(c.Session.Secret) < 16 {
		return fmt.Errorf("%s must be at least 16 characters", EnvSessionSecret)
	}
	return nil
}

type AppConfig struct {
	Env           string   `envconfig:"SSM_APP_ENV" required:"true"`
	Port          string   `envconfig:"SSM_APP_PORT" default:"8080"`
	LogLevel      string   `envconfig:"SSM_LOG_LEVEL" default:"info"`
	LogWarnStack  bool     `envconfig:"SSM_LOG_WARN_STACK" default:"false"`
	PublicBaseURL string   `envconfig:"SSM_PUBLIC_BASE_URL" default:"https://ssmdetailing.ro"`
	CORSOrigins   []string `envconfig:"SSM_CORS_ORIGINS"`
	// TrustedProxies lists the load balancer addresses or CIDRs whose
	// X-Forwarded-For header is believed.
	TrustedProxies []string `envconfig:"SSM_TRUSTED_PROXIES"`
}

// TrustedProxyPrefixes parses TrustedProxies; bare addresses become
// single-host prefixes.
func (a AppConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(a.TrustedProxies))
	for _, raw := range a.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", EnvTrustedProxies, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvTrustedProxies, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SSM_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SSM_DB_DSN"`
	Driver string `envconfig:"SSM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SSM_DB_HOST"`
	LegacyPort     int    `envconfig:"SSM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SSM_DB_USER"`
	LegacyPassword string `envconfig:"SSM_DB_PASSWORD"`
	LegacyName     string `envconfig:"SSM_DB_NAME"`
	LegacySSLMode  string `envconfig:"SSM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SSM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SSM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SSM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SSM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SSM_DB_SLOW_QUERY" default:"500ms"`
}

// IsSQLite reports whether the sqlite dialector should be used.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SSM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SSM_REDIS_ADDR"`
	Password     string        `envconfig:"SSM_REDIS_PASSWORD"`
	DB           int           `envconfig:"SSM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SSM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SSM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SSM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SSM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SSM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SSM_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SSM_JWT_ISSUER" default:"ssm-detailing"`
	ExpirationMinutes      int    `envconfig:"SSM_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"SSM_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SSM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SSM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SSM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SSM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SSM_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SSM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"SSM_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"SSM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// PublicRateLimitConfig bounds anonymous writes per client IP and session.
type PublicRateLimitConfig struct {
	LikeWindow          time.Duration `envconfig:"SSM_PUBLIC_RATE_LIMIT_LIKE_WINDOW" default:"1m"`
	LikeIPLimit         int           `envconfig:"SSM_PUBLIC_RATE_LIMIT_LIKE_IP_LIMIT" default:"120"`
	LikeSessionLimit    int           `envconfig:"SSM_PUBLIC_RATE_LIMIT_LIKE_SESSION_LIMIT" default:"60"`
	CommentWindow       time.Duration `envconfig:"SSM_PUBLIC_RATE_LIMIT_COMMENT_WINDOW" default:"10m"`
	CommentIPLimit      int           `envconfig:"SSM_PUBLIC_RATE_LIMIT_COMMENT_IP_LIMIT" default:"30"`
	CommentSessionLimit int           `envconfig:"SSM_PUBLIC_RATE_LIMIT_COMMENT_SESSION_LIMIT" default:"10"`
	ReviewWindow        time.Duration `envconfig:"SSM_PUBLIC_RATE_LIMIT_REVIEW_WINDOW" default:"1h"`
	ReviewIPLimit       int           `envconfig:"SSM_PUBLIC_RATE_LIMIT_REVIEW_IP_LIMIT" default:"5"`
	ReviewSessionLimit  int           `envconfig:"SSM_PUBLIC_RATE_LIMIT_REVIEW_SESSION_LIMIT" default:"3"`
	// FreshSessionIPLimit applies per policy window to writes that arrive
	// without an established visitor cookie.
	FreshSessionIPLimit int `envconfig:"SSM_PUBLIC_RATE_LIMIT_FRESH_SESSION_IP_LIMIT" default:"3"`
	// EventStreamsPerIP caps concurrent /reels/events streams per client IP.
	EventStreamsPerIP int `envconfig:"SSM_PUBLIC_EVENT_STREAMS_PER_IP" default:"4"`
	// EventStreamsTotal caps concurrent /reels/events streams per process.
	EventStreamsTotal int `envconfig:"SSM_PUBLIC_EVENT_STREAMS_TOTAL" default:"500"`
}

type SessionConfig struct {
	Secret       string        `envconfig:"SSM_SESSION_SECRET" required:"true"`
	CookieName   string        `envconfig:"SSM_SESSION_COOKIE_NAME" default:"reels_session_id"`
	CookieDomain string        `envconfig:"SSM_SESSION_COOKIE_DOMAIN"`
	CookieMaxAge time.Duration `envconfig:"SSM_SESSION_COOKIE_MAX_AGE" default:"8760h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SSM_AUTO_MIGRATE" default:"false"`
	ReelEvents  bool `envconfig:"SSM_FEATURE_REEL_EVENTS" default:"true"`
}

type StorageConfig struct {
	Driver       string `envconfig:"SSM_STORAGE_DRIVER" default:"gcs"`
	LocalDir     string `envconfig:"SSM_STORAGE_LOCAL_DIR" default:"./uploads"`
	LocalBaseURL string `envconfig:"SSM_STORAGE_LOCAL_BASE_URL" default:"/uploads"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"SSM_GOOGLE_MAPS_API_KEY"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SSM_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SSM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SSM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"SSM_GCS_BUCKET_NAME"`
	PublicBaseURL string `envconfig:"SSM_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

type MediaConfig struct {
	MaxVideoMB     int `envconfig:"SSM_MEDIA_MAX_VIDEO_MB" default:"100"`
	MaxImageMB     int `envconfig:"SSM_MEDIA_MAX_IMAGE_MB" default:"5"`
	ImageMaxWidth  int `envconfig:"SSM_MEDIA_IMAGE_MAX_WIDTH" default:"1920"`
	ImageMaxHeight int `envconfig:"SSM_MEDIA_IMAGE_MAX_HEIGHT" default:"1920"`
	ImageQuality   int `envconfig:"SSM_MEDIA_IMAGE_QUALITY" default:"85"`
	ThumbnailWidth int `envconfig:"SSM_MEDIA_THUMBNAIL_WIDTH" default:"540"`
}

func (m MediaConfig) MaxVideoBytes() int64 {
	return int64(m.MaxVideoMB) << 20
}

func (m MediaConfig) MaxImageBytes() int64 {
	return int64(m.MaxImageMB) << 20
}

type PubSubConfig struct {
	MediaSubscription         string `envconfig:"SSM_PUBSUB_MEDIA_SUBSCRIPTION"`
	MediaDeletionSubscription string `envconfig:"SSM_PUBSUB_MEDIA_DELETION_SUBSCRIPTION"`
	MaxOutstandingMessages    int    `envconfig:"SSM_PUBSUB_MAX_OUTSTANDING" default:"32"`
	ReceiveGoroutines         int    `envconfig:"SSM_PUBSUB_RECEIVE_GOROUTINES" default:"2"`
}

type BigQueryConfig struct {
	Dataset         string `envconfig:"SSM_BIGQUERY_DATASET"`
	EngagementTable string `envconfig:"SSM_BIGQUERY_ENGAGEMENT_TABLE" default:"reel_engagement_daily"`
}

// Enabled reports whether the engagement export has somewhere to write.
func (b BigQueryConfig) Enabled() bool {
	return strings.TrimSpace(b.Dataset) != "" && strings.TrimSpace(b.EngagementTable) != ""
}

type CacheConfig struct {
	ContentTTL time.Duration `envconfig:"SSM_CACHE_CONTENT_TTL" default:"5m"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"SSM_CRON_INTERVAL" default:"1h"`
	ReviewRetentionDays       int           `envconfig:"SSM_CRON_REVIEW_RETENTION_DAYS" default:"90"`
	PendingMediaRetentionDays int           `envconfig:"SSM_CRON_PENDING_MEDIA_DAYS" default:"7"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:ssm.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
