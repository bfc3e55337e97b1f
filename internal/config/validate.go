package config

import (
	"errors"
	"fmt"

	"assetdesk/internal/model"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateApproval(); err != nil {
		return err
	}
	if err := c.validateGeolocation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.Database == "" {
		return errors.New("server.database must be set")
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.LoginRateSecond < 1 {
		return errors.New("auth.login_rate_seconds must be at least 1")
	}
	if c.Auth.LoginBurst < 1 {
		return errors.New("auth.login_burst must be at least 1")
	}
	return nil
}

func (c *Config) validateApproval() error {
	for _, role := range c.Approval.Chain {
		if !model.KnownRole(role) {
			return fmt.Errorf("approval.chain contains unknown role %q", role)
		}
	}
	return nil
}

func (c *Config) validateGeolocation() error {
	if c.Geolocation.TimeoutSeconds < 1 {
		return errors.New("geolocation.timeout_seconds must be at least 1")
	}
	if c.Geolocation.MaxAgeSeconds < 0 {
		return errors.New("geolocation.max_age_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
}
