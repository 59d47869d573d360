package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/synotools/synoexport/internal/config"
)

// promptMissingCredentials asks for whatever the flags, environment and
// config file did not provide. Off a terminal it asks nothing and leaves
// the gaps for Validate to report.
func promptMissingCredentials(cfg *config.Config) error {
	if cfg.ServerURL != "" && cfg.Username != "" && cfg.Password != "" {
		return nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return nil
	}

	var fields []huh.Field
	if cfg.ServerURL == "" {
		fields = append(fields, huh.NewInput().
			Title("Synology NAS address").
			Placeholder("https://nas.local:5001").
			Value(&cfg.ServerURL).
			Validate(required("server url")))
	}
	if cfg.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&cfg.Username).
			Validate(required("username")))
	}
	if cfg.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&cfg.Password).
			Validate(required("password")))
	}

	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
