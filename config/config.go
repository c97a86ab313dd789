package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	DB          DatabaseConfig `mapstructure:"database"`
	Chain       ChainConfig    `mapstructure:"chain"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Elastic     ElasticConfig  `mapstructure:"elastic"`
	Azure       AzureConfig    `mapstructure:"azure"`
	Tracing     TracingConfig  `mapstructure:"tracing"`
	Worker      WorkerConfig   `mapstructure:"worker"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int           `mapstructure:"port"`
	Host        string        `mapstructure:"host"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CorsEnabled bool          `mapstructure:"cors_enabled"`
	CorsOrigins []string      `mapstructure:"cors_origins"`
}

// Address returns the listen address of the HTTP server
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds document store configuration.
// Driver is either "mongodb" or "postgres".
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URI             string        `mapstructure:"uri"`
	Name            string        `mapstructure:"name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ChainConfig holds the blockchain node and owner account configuration
type ChainConfig struct {
	RPCURL          string        `mapstructure:"rpc_url"`
	ContractAddress string        `mapstructure:"contract_address"`
	OwnerAddress    string        `mapstructure:"owner_address"`
	OwnerPrivateKey string        `mapstructure:"owner_private_key"`
	GasLimit        uint64        `mapstructure:"gas_limit"`
	ReceiptTimeout  time.Duration `mapstructure:"receipt_timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Enabled  bool          `mapstructure:"enabled"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ElasticConfig holds Elasticsearch configuration
type ElasticConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Prefix   string `mapstructure:"prefix"`
	Index    string `mapstructure:"index"`
}

// AzureConfig holds Azure Service Bus configuration
type AzureConfig struct {
	QueueConnStr      string `mapstructure:"queue_conn_str"`
	EventsQueueName   string `mapstructure:"events_queue_name"`
	ShipmentQueueName string `mapstructure:"shipment_queue_name"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	LicenseKey     string `mapstructure:"license_key"`
	AppName        string `mapstructure:"app_name"`
	LogEnabled     bool   `mapstructure:"log_enabled"`
	DistribTracing bool   `mapstructure:"distributed_tracing_enabled"`
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	DriftInterval time.Duration `mapstructure:"drift_interval"`
}

// legacyEnv maps configuration keys onto the bare environment variable
// names the service has always been deployed with.
var legacyEnv = map[string]string{
	"chain.owner_address":     "OWNER_ADDRESS",
	"chain.owner_private_key": "OWNER_PRIVATE_KEY",
	"chain.rpc_url":           "CHAIN_RPC_URL",
	"chain.contract_address":  "CONTRACT_ADDRESS",
	"database.uri":            "MONGO_URI",
	"server.port":             "PORT",
	"logging.level":           "LOG_LEVEL",
}

// LoadConfig reads configuration from file or environment variables.
// An empty path falls back to the working directory and ./config.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	setDefaults(v)

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".env") {
		v.SetConfigFile(path)
	} else {
		if path != "" {
			v.AddConfigPath(path)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			v.SetConfigName("app")
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				// Continue even if no config file is found - we'll use ENV vars and defaults
				fmt.Printf("Warning: No configuration file found: %v\n", err)
			}
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SUPPLYCHAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "SUPPLYCHAIN_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return config, nil
}

// Validate checks the settings the service cannot start without
func (c Config) Validate() error {
	if c.Chain.OwnerAddress == "" {
		return fmt.Errorf("OWNER_ADDRESS is not defined in environment variables")
	}
	switch c.DB.Driver {
	case "mongodb", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DB.Driver)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.cors_enabled", true)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "mongodb")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "supplychain")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "1h")

	v.SetDefault("chain.rpc_url", "http://localhost:8545")
	v.SetDefault("chain.contract_address", "")
	v.SetDefault("chain.owner_address", "")
	v.SetDefault("chain.owner_private_key", "")
	v.SetDefault("chain.gas_limit", 2000000)
	v.SetDefault("chain.receipt_timeout", "2m")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.ttl", "1m")

	v.SetDefault("elastic.enabled", false)
	v.SetDefault("elastic.url", "http://localhost:9200")
	v.SetDefault("elastic.username", "")
	v.SetDefault("elastic.password", "")
	v.SetDefault("elastic.prefix", "supplychain")
	v.SetDefault("elastic.index", "transactions")

	v.SetDefault("azure.queue_conn_str", "")
	v.SetDefault("azure.events_queue_name", "supplychain-events")
	v.SetDefault("azure.shipment_queue_name", "shipment-status")

	v.SetDefault("tracing.license_key", "")
	v.SetDefault("tracing.app_name", "Supply Chain Service")
	v.SetDefault("tracing.log_enabled", true)
	v.SetDefault("tracing.distributed_tracing_enabled", true)

	v.SetDefault("worker.drift_interval", "5m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// FormatIndex formats an Elasticsearch index name with the configured prefix
func FormatIndex(cfg ElasticConfig, index string) string {
	return cfg.Prefix + "-" + index
}
