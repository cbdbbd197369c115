package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"salonbook/internal/catalog"
)

// ServiceConfig represents a single service of the local catalog.
type ServiceConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`    // "25.00"
	Duration    int    `yaml:"duration"` // minutes
	Image       string `yaml:"image,omitempty"`
}

// ServicesConfig is the root configuration for services.yaml.
type ServicesConfig struct {
	Services []ServiceConfig `yaml:"services"`
}

// LoadServicesConfig loads and validates the local service catalog.
func LoadServicesConfig(path string) (*ServicesConfig, error) {
	if path == "" {
		path = "configs/services.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read services config: %w", err)
	}

	var cfg ServicesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse services config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate services config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the catalog for errors.
func (c *ServicesConfig) Validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("no services defined")
	}

	ids := make(map[string]bool)
	for i, s := range c.Services {
		if s.ID == "" {
			return fmt.Errorf("service[%d]: id is required", i)
		}
		if ids[s.ID] {
			return fmt.Errorf("service[%d]: duplicate id '%s'", i, s.ID)
		}
		ids[s.ID] = true

		if s.Name == "" {
			return fmt.Errorf("service[%d]: name is required", i)
		}
		price, err := decimal.NewFromString(s.Price)
		if err != nil {
			return fmt.Errorf("service[%d]: invalid price '%s'", i, s.Price)
		}
		if price.IsNegative() {
			return fmt.Errorf("service[%d]: price cannot be negative", i)
		}
		if s.Duration <= 0 {
			return fmt.Errorf("service[%d]: duration must be positive", i)
		}
	}
	return nil
}

// Catalog converts the configuration into catalog services.
func (c *ServicesConfig) Catalog() []catalog.Service {
	out := make([]catalog.Service, 0, len(c.Services))
	for _, s := range c.Services {
		out = append(out, catalog.Service{
			ID:          catalog.ID(s.ID),
			Name:        s.Name,
			Description: s.Description,
			Price:       decimal.RequireFromString(s.Price),
			Duration:    s.Duration,
			Image:       s.Image,
		})
	}
	return out
}
