package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "payflow"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "PAYFLOW_APP_ENV"
	EnvDBDSN  = "PAYFLOW_DB_DSN"
	EnvDBHost = "PAYFLOW_DB_HOST"
	EnvDBUser = "PAYFLOW_DB_USER"
	EnvDBName = "PAYFLOW_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
