package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/synotools/synoexport/internal/config"
	"github.com/synotools/synoexport/internal/synodrive"
)

func init() {
	rootCmd.AddCommand(newLoginCmd())
}

func newLoginCmd() *cobra.Command {
	var serverURL string
	var username string
	var password string
	var insecure bool
	var savePassword bool
	var quiet bool

	cmd := &cobra.Command{
		Use:     "login",
		Aliases: []string{"init"},
		Short:   "Verify NAS credentials and write the config file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// fetched from main/rootCmd/persistentFlags
			configPath := cmd.Flag("config").Value.String()

			cfg := &config.Config{
				ServerURL: serverURL,
				Username:  username,
				Password:  password,
				Insecure:  insecure,
			}
			if err := promptMissingCredentials(cfg); err != nil {
				return err
			}

			check := *cfg
			if err := check.Validate(); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			drive, err := synodrive.New(check.ServerURL, &synodrive.Options{
				Insecure: check.Insecure,
				Timeout:  config.DefaultTimeout,
			})
			if err != nil {
				return err
			}
			if err := drive.Login(cmd.Context(), check.Username, check.Password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			_ = drive.Logout(context.Background())

			// write only what the user gave us, the password only on request
			saved := &config.Config{
				ServerURL: cfg.ServerURL,
				Username:  cfg.Username,
				Insecure:  cfg.Insecure,
			}
			if savePassword {
				saved.Password = cfg.Password
			}
			if err := saved.Save(configPath); err != nil {
				return fmt.Errorf("config write failed: %w", err)
			}

			if !quiet {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, green.Render("Login OK"))
				fmt.Fprintf(out, "%s %s\n", gray.Render("Server"), check.ServerURL)
				fmt.Fprintf(out, "%s %s\n", gray.Render("User  "), check.Username)
				fmt.Fprintf(out, "%s %s\n", gray.Render("Config"), configPath)
				if !savePassword {
					fmt.Fprintln(out, gray.Render("The password was not saved. Pass it per run or use --save-password."))
				}
			}
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Synology NAS address, e.g. https://nas.local:5001")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Synology NAS username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Synology NAS password")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().BoolVar(&savePassword, "save-password", false, "store the password in the config file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable output")

	return cmd
}
