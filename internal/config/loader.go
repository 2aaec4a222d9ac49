package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	RedisAddr     string
	RedisPassword string

	SessionSecret string
	SessionTTL    time.Duration

	// IdentitySecret verifies ID tokens issued by the external sign-in
	// provider. IdentityAdminURL is the provider's account management
	// endpoint used when blocking users; empty disables the call.
	IdentitySecret   string
	IdentityIssuer   string
	IdentityAdminURL string

	// AdminEmails is the allow-list of addresses granted the admin role on
	// first sign-in, replacing the hard-coded bootstrap address.
	AdminEmails []string

	Timezone      string
	GridOpenHour  int
	GridCloseHour int
	MonitorTick   time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for missing entries.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:meetingsphere.db?_foreign_keys=on",
		SessionTTL:     24 * time.Hour,
		IdentityIssuer: "meetingsphere-identity",
		Timezone:       "Asia/Tokyo",
		GridOpenHour:   8,
		GridCloseHour:  18,
		MonitorTick:    time.Second,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("MEETINGSPHERE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MEETINGSPHERE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("MEETINGSPHERE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("MEETINGSPHERE_REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("MEETINGSPHERE_REDIS_PASSWORD")

	if secret := strings.TrimSpace(os.Getenv("MEETINGSPHERE_SESSION_SECRET")); secret == "" {
		missing = append(missing, "MEETINGSPHERE_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("MEETINGSPHERE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "MEETINGSPHERE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if secret := strings.TrimSpace(os.Getenv("MEETINGSPHERE_IDENTITY_SECRET")); secret == "" {
		missing = append(missing, "MEETINGSPHERE_IDENTITY_SECRET")
	} else {
		cfg.IdentitySecret = secret
	}

	if issuer := strings.TrimSpace(os.Getenv("MEETINGSPHERE_IDENTITY_ISSUER")); issuer != "" {
		cfg.IdentityIssuer = issuer
	}

	cfg.IdentityAdminURL = strings.TrimSpace(os.Getenv("MEETINGSPHERE_IDENTITY_ADMIN_URL"))

	if emails := strings.TrimSpace(os.Getenv("MEETINGSPHERE_ADMIN_EMAILS")); emails != "" {
		for _, email := range strings.Split(emails, ",") {
			email = strings.ToLower(strings.TrimSpace(email))
			if email != "" {
				cfg.AdminEmails = append(cfg.AdminEmails, email)
			}
		}
	}

	if tz := strings.TrimSpace(os.Getenv("MEETINGSPHERE_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "MEETINGSPHERE_TIMEZONE")
		} else {
			cfg.Timezone = tz
		}
	}

	if openValue := strings.TrimSpace(os.Getenv("MEETINGSPHERE_GRID_OPEN_HOUR")); openValue != "" {
		hour, err := strconv.Atoi(openValue)
		if err != nil || hour < 0 || hour > 23 {
			invalid = append(invalid, "MEETINGSPHERE_GRID_OPEN_HOUR")
		} else {
			cfg.GridOpenHour = hour
		}
	}

	// Close hour tops out at 23; a booking end time of "24:00" is not a
	// valid clock value.
	if closeValue := strings.TrimSpace(os.Getenv("MEETINGSPHERE_GRID_CLOSE_HOUR")); closeValue != "" {
		hour, err := strconv.Atoi(closeValue)
		if err != nil || hour < 1 || hour > 23 {
			invalid = append(invalid, "MEETINGSPHERE_GRID_CLOSE_HOUR")
		} else {
			cfg.GridCloseHour = hour
		}
	}

	if cfg.GridOpenHour >= cfg.GridCloseHour {
		invalid = append(invalid, "MEETINGSPHERE_GRID_OPEN_HOUR")
	}

	if tickValue := strings.TrimSpace(os.Getenv("MEETINGSPHERE_MONITOR_TICK")); tickValue != "" {
		tick, err := time.ParseDuration(tickValue)
		if err != nil || tick <= 0 {
			invalid = append(invalid, "MEETINGSPHERE_MONITOR_TICK")
		} else {
			cfg.MonitorTick = tick
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
