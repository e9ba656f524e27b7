package config

const (
	EnvPrefix = "SSM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageDriverGCS   = "gcs"
	StorageDriverLocal = "local"
)

const (
	EnvAppEnv                 = "SSM_APP_ENV"
	EnvPort                   = "SSM_APP_PORT"
	EnvLogLevel               = "SSM_LOG_LEVEL"
	EnvCORSOrigins            = "SSM_CORS_ORIGINS"
	EnvTrustedProxies         = "SSM_TRUSTED_PROXIES"
	EnvDBDSN                  = "SSM_DB_DSN"
	EnvDBDriver               = "SSM_DB_DRIVER"
	EnvDBHost                 = "SSM_DB_HOST"
	EnvDBUser                 = "SSM_DB_USER"
	EnvDBName                 = "SSM_DB_NAME"
	EnvRedisURL               = "SSM_REDIS_URL"
	EnvJWTSecret              = "SSM_JWT_SECRET"
	EnvJWTIssuer              = "SSM_JWT_ISSUER"
	EnvJWTExpMins             = "SSM_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SSM_REFRESH_TOKEN_TTL_MINUTES"
	EnvSessionSecret          = "SSM_SESSION_SECRET"
	EnvStorageDriver          = "SSM_STORAGE_DRIVER"
	EnvStorageLocalDir        = "SSM_STORAGE_LOCAL_DIR"
	EnvGCPProjectID           = "SSM_GCP_PROJECT_ID"
	EnvGCSBucket              = "SSM_GCS_BUCKET_NAME"
	EnvPubSubMediaSub         = "SSM_PUBSUB_MEDIA_SUBSCRIPTION"
	EnvPubSubMediaDeletionSub = "SSM_PUBSUB_MEDIA_DELETION_SUBSCRIPTION"
	EnvBigQueryDataset        = "SSM_BIGQUERY_DATASET"
	EnvAdminEmail             = "SSM_ADMIN_EMAIL"
	EnvAdminPassword          = "SSM_ADMIN_PASSWORD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
