package main

import (
	"fmt"

	"github.com/smartboa/sbsbs/internal/config"
	"github.com/smartboa/sbsbs/internal/drive"
	"github.com/smartboa/sbsbs/internal/server"
	"github.com/spf13/cobra"
	nuts "github.com/vaudience/go-nuts"
)

func rootCommand() *cobra.Command {
	var noLogo bool

	rootCmd := &cobra.Command{
		Use:           "sbsbs",
		Short:         "Smart Boa Snake Basking Station report hub",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !noLogo {
				// Clear console and draw logo
				ClearConsole()
				DrawLogo()
			}
			nuts.L.Infof("[Main] Starting SBSBS Hub v%s", nuts.GetVersion())

			// Load configuration
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			// Create and start server
			srv := server.New(cfg)
			if err := srv.Start(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	rootCmd.Flags().BoolVar(&noLogo, "no-logo", false, "Do not clear the console and draw the logo")

	rootCmd.AddCommand(driveAuthCommand(), versionCommand())
	return rootCmd
}

func driveAuthCommand() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "drive-auth",
		Short: "Authorise Google Drive report uploads",
		Long: `Authorise the hub to upload reports to Google Drive.

Run without --code to print the consent URL, open it in a browser and
run again with the code Google shows:

  sbsbs drive-auth
  sbsbs drive-auth --code=4/0Ab...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if code == "" {
				url, err := drive.AuthURL(cfg.Drive)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Open this link in your browser, then rerun with --code:\n%s\n", url)
				return nil
			}

			if err := drive.Authorize(cmd.Context(), cfg.Drive, code); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token stored in %s\n", cfg.Drive.TokenPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "Authorisation code from the consent page")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hub version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), nuts.GetVersion())
		},
	}
}
