package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mwatts/driftarb/pkg/secrets"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Binance BinanceConfig `mapstructure:"binance"`
	Drift   DriftConfig   `mapstructure:"drift"`
	Trading TradingConfig `mapstructure:"trading"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
	GCP     GCPConfig     `mapstructure:"gcp"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type BinanceConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Testnet   bool   `mapstructure:"testnet"`
}

type DriftConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`

	// JWT auth for gateways behind an authenticating proxy. Both fields
	// empty means the gateway is called unauthenticated.
	APIKeyName    string `mapstructure:"api_key_name"`
	PrivateKeyPEM string `mapstructure:"private_key_pem"`
}

type TradingConfig struct {
	Pairs []string `mapstructure:"pairs"`

	MinSpread         float64 `mapstructure:"min_spread"`
	FeeBuffer         float64 `mapstructure:"fee_buffer"`
	FeeRate           float64 `mapstructure:"fee_rate"`
	ReferenceNotional float64 `mapstructure:"reference_notional"`

	MinTradeSize        float64 `mapstructure:"min_trade_size"`
	MaxTradeSize        float64 `mapstructure:"max_trade_size"`
	MaxConcurrentOrders int     `mapstructure:"max_concurrent_orders"`
	FirstOrderFraction  float64 `mapstructure:"first_order_fraction"`
	SecondOrderFraction float64 `mapstructure:"second_order_fraction"`

	PollInterval   time.Duration `mapstructure:"poll_interval"`
	ReportInterval time.Duration `mapstructure:"report_interval"`
}

type NotifyConfig struct {
	DiscordWebhookURL string   `mapstructure:"discord_webhook_url"`
	Events            []string `mapstructure:"events"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GCPConfig struct {
	ProjectID       string              `mapstructure:"project_id"`
	UseSecrets      bool                `mapstructure:"use_secrets"`
	CredentialsFile string              `mapstructure:"credentials_file"`
	SecretNames     secrets.SecretNames `mapstructure:"secret_names"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/driftarb")
	}

	v.SetEnvPrefix("DRIFTARB")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&config)

	if config.GCP.UseSecrets && config.GCP.ProjectID != "" {
		ctx := context.Background()
		logger := logrus.New()
		if err := loadSecretsFromGCP(ctx, &config, logger); err != nil {
			return nil, fmt.Errorf("error loading secrets from GCP: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects threshold combinations the decision core cannot run
// with. A bad configuration is fatal at startup only.
func (c *Config) Validate() error {
	t := c.Trading
	if len(t.Pairs) == 0 {
		return fmt.Errorf("trading.pairs must not be empty")
	}
	if t.MinSpread <= 0 {
		return fmt.Errorf("trading.min_spread must be positive, got %f", t.MinSpread)
	}
	if t.MinTradeSize <= 0 || t.MaxTradeSize < t.MinTradeSize {
		return fmt.Errorf("trading trade size limits invalid: min %f max %f", t.MinTradeSize, t.MaxTradeSize)
	}
	if t.MaxConcurrentOrders < 1 {
		return fmt.Errorf("trading.max_concurrent_orders must be at least 1, got %d", t.MaxConcurrentOrders)
	}
	if t.FirstOrderFraction <= 0 || t.FirstOrderFraction > 1 ||
		t.SecondOrderFraction <= 0 || t.SecondOrderFraction > 1 {
		return fmt.Errorf("allocation fractions must be in (0, 1]")
	}
	if t.PollInterval <= 0 || t.ReportInterval <= 0 {
		return fmt.Errorf("trading intervals must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)

	// Venue defaults
	v.SetDefault("binance.testnet", false)
	v.SetDefault("drift.gateway_url", "http://localhost:8787")

	// Trading defaults
	v.SetDefault("trading.pairs", []string{"SOL/USDT"})
	v.SetDefault("trading.min_spread", 0.005)
	v.SetDefault("trading.fee_buffer", 0.001)
	v.SetDefault("trading.fee_rate", 0.002)
	v.SetDefault("trading.reference_notional", 100.0)
	v.SetDefault("trading.min_trade_size", 50.0)
	v.SetDefault("trading.max_trade_size", 200.0)
	v.SetDefault("trading.max_concurrent_orders", 2)
	v.SetDefault("trading.first_order_fraction", 0.45)
	v.SetDefault("trading.second_order_fraction", 0.90)
	v.SetDefault("trading.poll_interval", 2*time.Second)
	v.SetDefault("trading.report_interval", 10*time.Minute)

	// Notify defaults: empty events list allows everything
	v.SetDefault("notify.events", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// GCP defaults
	v.SetDefault("gcp.use_secrets", false)
	v.SetDefault("gcp.project_id", "")

	secretNames := secrets.DefaultSecretNames()
	v.SetDefault("gcp.secret_names.binance_api_key", secretNames.BinanceAPIKey)
	v.SetDefault("gcp.secret_names.binance_api_secret", secretNames.BinanceAPISecret)
	v.SetDefault("gcp.secret_names.drift_api_key_name", secretNames.DriftAPIKeyName)
	v.SetDefault("gcp.secret_names.drift_private_key", secretNames.DriftPrivateKey)
	v.SetDefault("gcp.secret_names.discord_webhook_url", secretNames.DiscordWebhookURL)
}

func overrideFromEnv(config *Config) {
	if apiKey := os.Getenv("BINANCE_API_KEY"); apiKey != "" {
		config.Binance.APIKey = apiKey
	}
	if apiSecret := os.Getenv("BINANCE_API_SECRET"); apiSecret != "" {
		config.Binance.APISecret = apiSecret
	}

	if gatewayURL := os.Getenv("DRIFT_GATEWAY_URL"); gatewayURL != "" {
		config.Drift.GatewayURL = gatewayURL
	}
	if apiKeyName := os.Getenv("DRIFT_API_KEY_NAME"); apiKeyName != "" {
		config.Drift.APIKeyName = apiKeyName
	}
	if privateKey := os.Getenv("DRIFT_PRIVATE_KEY"); privateKey != "" {
		config.Drift.PrivateKeyPEM = privateKey
	}

	if webhookURL := os.Getenv("DISCORD_WEBHOOK_URL"); webhookURL != "" {
		config.Notify.DiscordWebhookURL = webhookURL
	}

	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		config.GCP.ProjectID = projectID
	}
	if useSecrets := os.Getenv("GCP_USE_SECRETS"); useSecrets == "true" {
		config.GCP.UseSecrets = true
	}
}

func loadSecretsFromGCP(ctx context.Context, config *Config, logger *logrus.Logger) error {
	secretManager, err := secrets.NewGCPSecretManager(ctx, config.GCP.ProjectID, config.GCP.CredentialsFile, logger)
	if err != nil {
		return fmt.Errorf("failed to create secret manager: %w", err)
	}
	defer secretManager.Close()

	// Only load secrets that are not already set
	if config.Binance.APIKey == "" {
		config.Binance.APIKey = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.BinanceAPIKey, "")
	}
	if config.Binance.APISecret == "" {
		config.Binance.APISecret = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.BinanceAPISecret, "")
	}
	if config.Drift.APIKeyName == "" {
		config.Drift.APIKeyName = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.DriftAPIKeyName, "")
	}
	if config.Drift.PrivateKeyPEM == "" {
		config.Drift.PrivateKeyPEM = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.DriftPrivateKey, "")
	}
	if config.Notify.DiscordWebhookURL == "" {
		config.Notify.DiscordWebhookURL = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.DiscordWebhookURL, "")
	}

	logger.Info("Successfully loaded secrets from GCP Secret Manager")
	return nil
}
