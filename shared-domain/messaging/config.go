package messaging

import (
	"time"
)

type RabbitMQConfig struct {
	URL               string
	Exchange          string
	RetryCount        int
	RetryDelay        time.Duration
	ConnectionTimeout time.Duration
	// MaxDeliveries bounds how often a failing message is redelivered.
	MaxDeliveries int
}

func NewRabbitMQConfig(url, exchange string) *RabbitMQConfig {
	if exchange == "" {
		exchange = "ecommerce.events"
	}
	return &RabbitMQConfig{
		URL:               url,
		Exchange:          exchange,
		RetryCount:        3,
		RetryDelay:        time.Second * 5,
		ConnectionTimeout: time.Second * 30,
		MaxDeliveries:     3,
	}
}

func (c *RabbitMQConfig) ConnectionURL() string {
	return c.URL
}
