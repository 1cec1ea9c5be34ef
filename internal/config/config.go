package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is read once at start-up and never mutated afterwards. Every channel
// section is optional; missing settings disable that channel only.
type Config struct {
	Port        string `env:"PORT" env-default:"8005"`
	ServiceName string `env:"SERVICE_NAME" env-default:"notification-service"`

	SMTP         SMTP
	Twilio       Twilio
	Push         Push
	Recipients   Recipients
	Presentation Presentation
	Dispatch     Dispatch
	Database     Database
	Redis        Redis
	RabbitMQ     RabbitMQ
}

type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM"`
}

func (s SMTP) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type Twilio struct {
	AccountSID   string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken    string `env:"TWILIO_AUTH_TOKEN"`
	SMSFrom      string `env:"TWILIO_SMS_FROM"`
	WhatsAppFrom string `env:"TWILIO_WHATSAPP_FROM"`
}

func (t Twilio) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != ""
}

type Push struct {
	Server       string `env:"NTFY_SERVER"`
	Token        string `env:"NTFY_TOKEN"`
	KitchenTopic string `env:"NTFY_TOPIC"`
	ManagerTopic string `env:"NTFY_MANAGER_TOPIC"`
}

func (p Push) Enabled() bool {
	return p.Server != "" && p.KitchenTopic != ""
}

type Contact struct {
	Name     string
	Phone    string
	WhatsApp string
	Email    string
}

func (c Contact) Empty() bool {
	return c.Phone == "" && c.WhatsApp == "" && c.Email == ""
}

type Recipients struct {
	PrimaryName      string `env:"PRIMARY_NAME" env-default:"Kitchen"`
	PrimaryPhone     string `env:"PRIMARY_PHONE"`
	PrimaryWhatsApp  string `env:"PRIMARY_WHATSAPP"`
	PrimaryEmail     string `env:"PRIMARY_EMAIL"`
	SecondaryName    string `env:"SECONDARY_NAME" env-default:"Kitchen (secondary)"`
	SecondaryPhone   string `env:"SECONDARY_PHONE"`
	SecondaryWA      string `env:"SECONDARY_WHATSAPP"`
	SecondaryEmail   string `env:"SECONDARY_EMAIL"`
	ManagerName      string `env:"MANAGER_NAME" env-default:"Manager"`
	ManagerPhone     string `env:"MANAGER_PHONE"`
	ManagerWhatsApp  string `env:"MANAGER_WHATSAPP"`
	ManagerEmail     string `env:"MANAGER_EMAIL"`

	// KitchenEmailList overrides the staff emails as kitchen ticket targets.
	KitchenEmailList []string `env:"KITCHEN_EMAILS" env-separator:","`
}

func (r Recipients) Primary() Contact {
	return Contact{Name: r.PrimaryName, Phone: r.PrimaryPhone, WhatsApp: r.PrimaryWhatsApp, Email: r.PrimaryEmail}
}

func (r Recipients) Secondary() Contact {
	return Contact{Name: r.SecondaryName, Phone: r.SecondaryPhone, WhatsApp: r.SecondaryWA, Email: r.SecondaryEmail}
}

func (r Recipients) Manager() Contact {
	return Contact{Name: r.ManagerName, Phone: r.ManagerPhone, WhatsApp: r.ManagerWhatsApp, Email: r.ManagerEmail}
}

type Presentation struct {
	CurrencySymbol     string  `env:"CURRENCY_SYMBOL" env-default:"£"`
	Timezone           string  `env:"TIMEZONE" env-default:"Europe/London"`
	RestaurantName     string  `env:"RESTAURANT_NAME" env-default:"Our Restaurant"`
	CollectionSite     string  `env:"COLLECTION_SITE" env-default:"Collect from the restaurant counter"`
	DefaultDeliveryFee float64 `env:"DEFAULT_DELIVERY_FEE" env-default:"21.99"`
}

// Location resolves Timezone, falling back to UTC for unknown zones.
func (p Presentation) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Dispatch struct {
	ChannelTimeout time.Duration `env:"NOTIFY_CHANNEL_TIMEOUT" env-default:"15s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" env-default:"24h"`
}

type Database struct {
	URL string `env:"DATABASE_URL"`
}

type Redis struct {
	URL string `env:"REDIS_URL"`
}

type RabbitMQ struct {
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"RABBITMQ_EXCHANGE" env-default:"ecommerce.events"`
	Queue    string `env:"RABBITMQ_QUEUE" env-default:"notification.events"`
}

func (r RabbitMQ) Enabled() bool {
	return r.URL != ""
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	cfg.Recipients.KitchenEmailList = compact(cfg.Recipients.KitchenEmailList)
	return &cfg, nil
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
