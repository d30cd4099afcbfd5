package config

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collection-governance/internal/address"
	"collection-governance/internal/domain"
)

func testAddress(t *testing.T, b byte) string {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = b
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	h, err := address.FromPublicKey(pub)
	require.NoError(t, err)
	return h.String()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	admin := testAddress(t, 1)
	path := writeConfig(t, fmt.Sprintf("collection:\n  admin: %s\n", admin))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/graphql", cfg.Server.GraphQLPath)
	assert.Equal(t, domain.DefaultTotalSupply, cfg.Collection.TotalSupply)
	assert.Equal(t, domain.DefaultPricePerItem, cfg.Collection.PricePerItem)
	assert.Equal(t, domain.DefaultMaxPerHolder, cfg.Collection.MaxPerHolder)
	assert.Equal(t, domain.DefaultProposalCooldown, cfg.Governance.ProposalCooldown)
	assert.Equal(t, admin, cfg.Governance.Admin, "governance admin falls back to collection admin")
	assert.True(t, cfg.Storage.UseMemory)
	assert.False(t, cfg.Kafka.Enabled)

	ledger := cfg.Ledger()
	assert.Equal(t, domain.Holder(admin), ledger.Admin)
	assert.Equal(t, domain.Holder(admin), ledger.PaymentReceiver())

	addr, err := cfg.LedgerAddress()
	require.NoError(t, err)
	assert.False(t, address.IsOnCurve(mustDecode(t, addr)))
}

func mustDecode(t *testing.T, h domain.Holder) []byte {
	t.Helper()
	raw, err := address.Decode(h.String())
	require.NoError(t, err)
	return raw
}

func TestLoad_File(t *testing.T) {
	admin, gov, alice := testAddress(t, 1), testAddress(t, 2), testAddress(t, 3)
	path := writeConfig(t, fmt.Sprintf(`
server:
  addr: ":9090"
collection:
  name: Test
  symbol: TST
  total_supply: 50
  price_per_item: 5
  max_per_holder: 3
  admin: %s
governance:
  min_proposal_votes: 2
  proposal_cooldown: 1h
  admin: %s
payment:
  symbol: DAI
  balances:
    - holder: %s
      amount: 1000
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
  topic: events
`, admin, gov, alice))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, uint64(50), cfg.Collection.TotalSupply)
	assert.Equal(t, time.Hour, cfg.Governance.ProposalCooldown)
	assert.Equal(t, gov, cfg.Governance.Admin)
	assert.Equal(t, uint64(2), cfg.GovernanceRules().MinProposalVotes)
	require.Len(t, cfg.Payment.Balances, 1)
	assert.Equal(t, alice, cfg.Payment.Balances[0].Holder, "holder case must be preserved")
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_EnvOverride(t *testing.T) {
	admin := testAddress(t, 1)
	t.Setenv("CG_COLLECTION_ADMIN", admin)
	t.Setenv("CG_SERVER_ADDR", ":7000")
	t.Setenv("CG_COLLECTION_MAX_PER_HOLDER", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, uint64(4), cfg.Collection.MaxPerHolder)
	assert.Equal(t, admin, cfg.Collection.Admin)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	admin := testAddress(t, 1)
	base := func() *Config {
		path := writeConfig(t, fmt.Sprintf("collection:\n  admin: %s\n", admin))
		cfg, err := Load(path)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"bad admin", func(c *Config) { c.Collection.Admin = "not-an-address" }, domain.ErrInvalidHolder},
		{"zero supply", func(c *Config) { c.Collection.TotalSupply = 0 }, domain.ErrInvalidValue},
		{"zero threshold", func(c *Config) { c.Governance.MinVotesToApprove = 0 }, domain.ErrInvalidValue},
		{"bad balance holder", func(c *Config) {
			c.Payment.Balances = []BalanceConfig{{Holder: "x", Amount: 1}}
		}, domain.ErrInvalidHolder},
		{"durable storage without dsn", func(c *Config) { c.Storage.UseMemory = false }, nil},
		{"kafka without topic", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Topic = ""
		}, nil},
		{"relative path", func(c *Config) { c.Server.GraphQLPath = "graphql" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.name == "valid" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}
