package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Config struct {
	SaveDirectory string
	StorePath     string
	DefaultAgent  string
	Confirmations bool
	Theme         Theme
}

func newViper() *viper.Viper {
	v := viper.New()
	theme := DefaultTheme()
	v.SetDefault("save_directory", "")
	v.SetDefault("store_path", "~/.taskcanvas/store")
	v.SetDefault("default_agent", "claude")
	v.SetDefault("confirmations", true)
	v.SetDefault("theme.node", string(theme.Node))
	v.SetDefault("theme.selected", string(theme.Selected))
	v.SetDefault("theme.arrow", string(theme.Arrow))
	v.SetDefault("theme.connect_source", string(theme.ConnectSource))
	v.SetDefault("theme.html_badge", string(theme.HTMLBadge))
	v.SetDefault("theme.dimmed", string(theme.Dimmed))
	v.SetDefault("theme.accent", string(theme.Accent))

	v.SetEnvPrefix("TASKCANVAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the config file at path, or ~/.taskcanvas.{yaml,toml,json}
// when path is empty. A missing default file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("config: expand %s: %w", path, err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName(".taskcanvas")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return configFrom(v)
}

func configFrom(v *viper.Viper) (*Config, error) {
	saveDir, err := absPath(v.GetString("save_directory"))
	if err != nil {
		return nil, err
	}
	storePath, err := absPath(v.GetString("store_path"))
	if err != nil {
		return nil, err
	}

	return &Config{
		SaveDirectory: saveDir,
		StorePath:     storePath,
		DefaultAgent:  v.GetString("default_agent"),
		Confirmations: v.GetBool("confirmations"),
		Theme: Theme{
			Node:          lipgloss.Color(v.GetString("theme.node")),
			Selected:      lipgloss.Color(v.GetString("theme.selected")),
			Arrow:         lipgloss.Color(v.GetString("theme.arrow")),
			ConnectSource: lipgloss.Color(v.GetString("theme.connect_source")),
			HTMLBadge:     lipgloss.Color(v.GetString("theme.html_badge")),
			Dimmed:        lipgloss.Color(v.GetString("theme.dimmed")),
			Accent:        lipgloss.Color(v.GetString("theme.accent")),
		},
	}, nil
}

func absPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("config: expand %s: %w", p, err)
	}
	if !filepath.IsAbs(expanded) {
		if abs, err := filepath.Abs(expanded); err == nil {
			expanded = abs
		}
	}
	return expanded, nil
}

// GetSavePath places an export file in the configured save directory.
func (c *Config) GetSavePath(filename string) (string, error) {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename, nil
	}
	if err := os.MkdirAll(c.SaveDirectory, 0755); err != nil {
		return "", fmt.Errorf("config: create %s: %w", c.SaveDirectory, err)
	}
	return filepath.Join(c.SaveDirectory, filename), nil
}
