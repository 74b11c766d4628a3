package config

import (
	"time"
)

type PaymentConfig struct {
	Paystack *PaystackConfig `yaml:"paystack"`
	Currency string          `yaml:"currency"`
}

type PaystackConfig struct {
	SecretKey string        `yaml:"secret_key"`
	PublicKey string        `yaml:"public_key"`
	Timeout   time.Duration `yaml:"timeout"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		Paystack: &PaystackConfig{
			SecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
			PublicKey: getEnv("PAYSTACK_PUBLIC_KEY", ""),
			Timeout:   getEnvAsDuration("PAYSTACK_TIMEOUT", 30*time.Second),
		},
		Currency: getEnv("PAYMENT_CURRENCY", "NGN"),
	}
}
