// Package easyshop wires the shop bot: configuration, storage, routers and lifecycle.
package easyshop

import (
	"fmt"

	"github.com/m3rciful/easyshop/bots/easyshop/catalog"
	coreconfig "github.com/m3rciful/easyshop/core/config"
	coredatabase "github.com/m3rciful/easyshop/core/database"
)

// Config extends the core configuration with shop specific sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	// Catalog seeds the store. It is read from YAML only; empty means DefaultProducts.
	Catalog []catalog.Product `yaml:"catalog" ignored:"true"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads the optional YAML file at path and the environment, then validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := normalizeCatalog(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeCatalog(cfg *Config) error {
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = catalog.DefaultProducts()
		return nil
	}
	seen := make(map[int64]struct{}, len(cfg.Catalog))
	for i, p := range cfg.Catalog {
		switch {
		case p.ID <= 0:
			return fmt.Errorf("catalog[%d]: id must be positive", i)
		case p.Title == "":
			return fmt.Errorf("catalog[%d]: title is required", i)
		case p.Price <= 0:
			return fmt.Errorf("catalog[%d]: price must be positive", i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("catalog[%d]: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
