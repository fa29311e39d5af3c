package env

const (
	// Prefix is the environment variable prefix for all poerates flags
	Prefix = "POERATES_"

	// DBURLSuffix is the suffix of the Postgres connection string variable
	DBURLSuffix = "DB_URL"

	// RedisURLSuffix is the suffix of the Redis connection string variable
	RedisURLSuffix = "REDIS_URL"
)
