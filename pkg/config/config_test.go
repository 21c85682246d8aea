package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg := fromViper(viper.New())

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "postgres", cfg.App.Storage)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
	assert.Equal(t, "", cfg.Redis.URL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_EnvOverrides(t *testing.T) {
	v := viper.New()
	v.Set("STRIPE_SECRET_KEY", "sk_test_abc")
	v.Set("STRIPE_WEBHOOK_SECRET", "whsec_abc")
	v.Set("STRIPE_CURRENCY", "USD")
	v.Set("DB_PORT", "6543")
	v.Set("HTTP_PORT", "not-a-number")

	cfg := fromViper(v)

	assert.Equal(t, "usd", cfg.Stripe.Currency)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 8080, cfg.HTTP.Port, "valor inválido cae al default")
	require.NoError(t, cfg.Stripe.Validate())
}

func TestStripeConfig_Validate(t *testing.T) {
	assert.Error(t, StripeConfig{}.Validate())
	assert.Error(t, StripeConfig{SecretKey: "pk_test_x", WebhookSecret: "whsec_x", Currency: "usd"}.Validate())
	assert.Error(t, StripeConfig{SecretKey: "sk_test_x", Currency: "usd"}.Validate())
	assert.NoError(t, StripeConfig{SecretKey: "sk_test_x", WebhookSecret: "whsec_x", Currency: "usd"}.Validate())
}

func TestStripeConfig_ValidateSoloMonedasConCentavos(t *testing.T) {
	base := StripeConfig{SecretKey: "sk_test_x", WebhookSecret: "whsec_x"}
	for _, cur := range []string{"usd", "eur", "cop", "mxn"} {
		base.Currency = cur
		assert.NoError(t, base.Validate(), cur)
	}
	for _, cur := range []string{"jpy", "JPY", "krw", "clp", "kwd", "dollars"} {
		base.Currency = cur
		assert.Error(t, base.Validate(), cur)
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "rx", Password: "p@ss:word", DBName: "pharmaops", SSLMode: "disable"}
	assert.Equal(t, "postgres://rx:p%40ss%3Aword@db:5432/pharmaops?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://u:p@h:1/d"
	assert.Equal(t, "postgres://u:p@h:1/d", c.ConnectionString())
}
