// Package config loads and validates the valuation input configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const dateLayout = "2006-01-02"

// Error reports a missing or invalid configuration.
type Error struct {
	Fields []string
	Cause  error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("invalid configuration: %v", e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Config holds all inputs for a valuation run.
//
// Dates are ISO YYYY-MM-DD strings, validated on load; use the accessor
// methods for the parsed values.
type Config struct {
	StockPrice     float64  `mapstructure:"stock_price" validate:"gt=0"`
	StrikePrice    float64  `mapstructure:"strike_price" validate:"gt=0"`
	GrantDate      string   `mapstructure:"grant_date" validate:"required,datetime=2006-01-02"`
	ValuationDate  string   `mapstructure:"valuation_date" validate:"required,datetime=2006-01-02"`
	ExpirationDate string   `mapstructure:"expiration_date" validate:"required,datetime=2006-01-02"`
	VestingEndDate string   `mapstructure:"vesting_end_date" validate:"required,datetime=2006-01-02"`
	PublicComps    []string `mapstructure:"public_comps" validate:"required,min=1,dive,required"`
	Frequency      string   `mapstructure:"frequency" validate:"omitempty,oneof=daily weekly monthly"`

	// Provider settings; all optional.
	DataDir      string `mapstructure:"data_dir"`
	YahooBaseURL string `mapstructure:"yahoo_base_url"`
}

// configKeys lists every mapstructure key. Each key is bound to its env
// variable explicitly; AutomaticEnv alone does not surface env-only keys
// to Unmarshal.
var configKeys = []string{
	"stock_price",
	"strike_price",
	"grant_date",
	"valuation_date",
	"expiration_date",
	"vesting_end_date",
	"public_comps",
	"frequency",
	"data_dir",
	"yahoo_base_url",
}

// Load reads the configuration file at path and merges environment
// overrides. Environment variables use the SBC_ prefix
// (e.g. SBC_YAHOO_BASE_URL).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("SBC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, &Error{Cause: fmt.Errorf("binding env for %s: %w", key, err)}
		}
	}

	v.SetDefault("frequency", "daily")

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Cause: fmt.Errorf("reading config file: %w", err)}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{Cause: fmt.Errorf("unmarshaling config: %w", err)}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &Error{Cause: err}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fieldName(fe.Field()), fe.Tag()))
	}
	return &Error{Fields: fields, Cause: err}
}

// fieldName converts a Go struct field name back to its config key.
func fieldName(field string) string {
	var sb strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r - 'A' + 'a')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// mustDate parses a date string already checked by validation.
func mustDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(fmt.Sprintf("config: unvalidated date %q: %v", s, err))
	}
	return t
}

// GrantDateTime returns the parsed grant date.
func (c *Config) GrantDateTime() time.Time { return mustDate(c.GrantDate) }

// ValuationDateTime returns the parsed valuation date.
func (c *Config) ValuationDateTime() time.Time { return mustDate(c.ValuationDate) }

// ExpirationDateTime returns the parsed expiration date.
func (c *Config) ExpirationDateTime() time.Time { return mustDate(c.ExpirationDate) }

// VestingEndDateTime returns the parsed vesting end date.
func (c *Config) VestingEndDateTime() time.Time { return mustDate(c.VestingEndDate) }
