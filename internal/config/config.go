// Package config loads service configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"collection-governance/internal/address"
	"collection-governance/internal/domain"
)

// EnvPrefix prefixes environment overrides, e.g. CG_SERVER_ADDR.
const EnvPrefix = "CG"

// Config is the service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Collection CollectionConfig `mapstructure:"collection"`
	Governance GovernanceConfig `mapstructure:"governance"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	GraphQLPath     string        `mapstructure:"graphql_path"`
	EventsPath      string        `mapstructure:"events_path"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CollectionConfig struct {
	Name         string `mapstructure:"name"`
	Symbol       string `mapstructure:"symbol"`
	TotalSupply  uint64 `mapstructure:"total_supply"`
	PricePerItem uint64 `mapstructure:"price_per_item"`
	MaxPerHolder uint64 `mapstructure:"max_per_holder"`
	BaseURI      string `mapstructure:"base_uri"`
	Admin        string `mapstructure:"admin"`
	Beneficiary  string `mapstructure:"beneficiary"`
	ProgramID    string `mapstructure:"program_id"`
}

type GovernanceConfig struct {
	MinProposalVotes   uint64        `mapstructure:"min_proposal_votes"`
	MinVotesToApprove  uint64        `mapstructure:"min_votes_to_approve"`
	MinTokensToApprove uint64        `mapstructure:"min_tokens_to_approve"`
	ProposalCooldown   time.Duration `mapstructure:"proposal_cooldown"`
	// Admin defaults to the collection admin when empty.
	Admin string `mapstructure:"admin"`
}

// PaymentConfig describes the in-process payment token.
type PaymentConfig struct {
	Symbol   string          `mapstructure:"symbol"`
	Balances []BalanceConfig `mapstructure:"balances"`
}

// BalanceConfig is an opening payment-token balance. The amount is also
// approved for the ledger to spend.
type BalanceConfig struct {
	Holder string `mapstructure:"holder"`
	Amount uint64 `mapstructure:"amount"`
}

type StorageConfig struct {
	UseMemory     bool   `mapstructure:"use_memory"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickHouseDSN string `mapstructure:"clickhouse_dsn"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Stream   string        `mapstructure:"stream"`
	MaxLen   int64         `mapstructure:"max_len"`
}

// Load reads configuration from path (optional) with defaults and
// environment overrides applied, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Governance.Admin == "" {
		cfg.Governance.Admin = cfg.Collection.Admin
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.graphql_path", "/graphql")
	v.SetDefault("server.events_path", "/events")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("collection.name", "Enanos de Leyenda")
	v.SetDefault("collection.symbol", "ENANOS")
	v.SetDefault("collection.total_supply", domain.DefaultTotalSupply)
	v.SetDefault("collection.price_per_item", domain.DefaultPricePerItem)
	v.SetDefault("collection.max_per_holder", domain.DefaultMaxPerHolder)
	v.SetDefault("collection.base_uri", "")
	v.SetDefault("collection.admin", "")
	v.SetDefault("collection.beneficiary", "")
	v.SetDefault("collection.program_id", address.DefaultProgramID)

	v.SetDefault("governance.min_proposal_votes", domain.DefaultMinProposalVotes)
	v.SetDefault("governance.min_votes_to_approve", domain.DefaultMinVotesToApprove)
	v.SetDefault("governance.min_tokens_to_approve", domain.DefaultMinTokensToApprove)
	v.SetDefault("governance.proposal_cooldown", domain.DefaultProposalCooldown)
	v.SetDefault("governance.admin", "")

	v.SetDefault("payment.symbol", "USDC")

	v.SetDefault("storage.use_memory", true)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "collection-events")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.timeout", 5*time.Second)
	v.SetDefault("redis.stream", "collection:events")
	v.SetDefault("redis.max_len", int64(100_000))
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if !strings.HasPrefix(c.Server.GraphQLPath, "/") || !strings.HasPrefix(c.Server.EventsPath, "/") {
		errs = append(errs, errors.New("server paths must start with /"))
	}

	if _, err := address.Parse(c.Collection.Admin); err != nil {
		errs = append(errs, fmt.Errorf("collection.admin: %w", err))
	}
	if c.Collection.Beneficiary != "" {
		if _, err := address.Parse(c.Collection.Beneficiary); err != nil {
			errs = append(errs, fmt.Errorf("collection.beneficiary: %w", err))
		}
	}
	if _, err := address.Parse(c.Governance.Admin); err != nil {
		errs = append(errs, fmt.Errorf("governance.admin: %w", err))
	}
	if _, err := address.Decode(c.Collection.ProgramID); err != nil {
		errs = append(errs, fmt.Errorf("collection.program_id: %w", err))
	}
	if err := c.Ledger().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("collection: %w", err))
	}
	if err := c.GovernanceRules().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("governance: %w", err))
	}

	for i, b := range c.Payment.Balances {
		if _, err := address.Parse(b.Holder); err != nil {
			errs = append(errs, fmt.Errorf("payment.balances[%d].holder: %w", i, err))
		}
	}

	if !c.Storage.UseMemory && (c.Storage.PostgresDSN == "" || c.Storage.ClickHouseDSN == "") {
		errs = append(errs, errors.New("storage: postgres_dsn and clickhouse_dsn are required unless use_memory is set"))
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		errs = append(errs, errors.New("kafka: brokers and topic are required when enabled"))
	}
	if c.Redis.Enabled && (c.Redis.Address == "" || c.Redis.Stream == "") {
		errs = append(errs, errors.New("redis: address and stream are required when enabled"))
	}

	return errors.Join(errs...)
}

// Ledger returns the allocation ledger parameters.
func (c *Config) Ledger() domain.LedgerConfig {
	return domain.LedgerConfig{
		Name:         c.Collection.Name,
		Symbol:       c.Collection.Symbol,
		TotalSupply:  c.Collection.TotalSupply,
		PricePerItem: c.Collection.PricePerItem,
		MaxPerHolder: c.Collection.MaxPerHolder,
		BaseURI:      c.Collection.BaseURI,
		Admin:        domain.Holder(c.Collection.Admin),
		Beneficiary:  domain.Holder(c.Collection.Beneficiary),
	}
}

// GovernanceRules returns the governance engine parameters.
func (c *Config) GovernanceRules() domain.GovernanceConfig {
	return domain.GovernanceConfig{
		MinProposalVotes:   c.Governance.MinProposalVotes,
		MinVotesToApprove:  c.Governance.MinVotesToApprove,
		MinTokensToApprove: c.Governance.MinTokensToApprove,
		ProposalCooldown:   c.Governance.ProposalCooldown,
		Admin:              domain.Holder(c.Governance.Admin),
	}
}

// LedgerAddress derives the reserved address of the ledger.
func (c *Config) LedgerAddress() (domain.Holder, error) {
	return address.LedgerAddress(c.Collection.ProgramID, c.Collection.Symbol)
}
