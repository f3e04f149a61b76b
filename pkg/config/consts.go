package config

// EnvPrefix namespaces every Strataform environment variable.
const EnvPrefix = "STRATAFORM"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "STRATAFORM_APP_ENV"
	EnvAppPort = "STRATAFORM_APP_PORT"
	EnvDBDSN   = "STRATAFORM_DB_DSN"
	EnvDBHost  = "STRATAFORM_DB_HOST"
	EnvDBUser  = "STRATAFORM_DB_USER"
	EnvDBName  = "STRATAFORM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
