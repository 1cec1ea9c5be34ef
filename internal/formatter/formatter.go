// Package formatter turns orders and payments into channel-ready messages.
// Every function is pure: the same input and settings give the same bytes.
package formatter

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultTimeLayout = "02 Jan 2006 15:04"

type Settings struct {
	CurrencySymbol string
	Location       *time.Location
	RestaurantName string
	CollectionSite string
	TimeLayout     string
}

type Formatter struct {
	settings Settings
}

func New(settings Settings) *Formatter {
	if settings.CurrencySymbol == "" {
		settings.CurrencySymbol = "£"
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.TimeLayout == "" {
		settings.TimeLayout = DefaultTimeLayout
	}
	if settings.RestaurantName == "" {
		settings.RestaurantName = "The Restaurant"
	}
	if settings.CollectionSite == "" {
		settings.CollectionSite = "Collect from the restaurant counter"
	}
	return &Formatter{settings: settings}
}

func (f *Formatter) Settings() Settings {
	return f.settings
}

func (f *Formatter) money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + f.settings.CurrencySymbol + d.Abs().StringFixed(2)
	}
	return f.settings.CurrencySymbol + d.StringFixed(2)
}

func (f *Formatter) when(t time.Time) string {
	return t.In(f.settings.Location).Format(f.settings.TimeLayout)
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// truncate keeps SMS bodies inside a single concatenated message.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
