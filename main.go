package main

import (
	"fmt"
	"log"
	"os"

	"dayplan/internal"
	"dayplan/internal/api"
	"dayplan/internal/config"
	"dayplan/internal/session"
	"dayplan/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const appVersion = "0.1.0"

func main() {
	var configPath, backendURL string

	cmd := &cobra.Command{
		Use:           "dayplan",
		Short:         "Plan today's tasks and keep your streaks going",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, backendURL)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/dayplan/dayplan.yml)")
	cmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL, overrides backend_url")

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, backendURL)
			if err != nil {
				return err
			}
			return logout(cmd, cfg)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path, backendURL string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	f, err := tea.LogToFile(cfg.LogFile, "")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	logger := log.New(f, "", log.LstdFlags)

	store, err := session.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	sess, err := session.Load(store)
	if err != nil {
		return err
	}

	m, err := internal.NewModel(internal.Deps{
		Session: sess,
		Backend: api.New(cfg.BackendURL, sess, cfg.RequestTimeout, logger),
		Refresh: timer.New(cfg.RefreshInterval),
		Config:  cfg,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	logger.Printf("INFO: dayplan %s starting against %s", appVersion, cfg.BackendURL)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func logout(cmd *cobra.Command, cfg *config.Config) error {
	store, err := session.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	sess, err := session.Load(store)
	if err != nil {
		return err
	}
	if !sess.Authenticated() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		return nil
	}
	email := sess.Email()
	if err := sess.SignOut(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s.\n", email)
	return nil
}
