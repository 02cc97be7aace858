package cmd

import (
	"fmt"
	"os"

	"github.com/ljos/budzilla/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagInitAuthURL  string
	flagInitEntryURL string
	flagInitUsername string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.budzilla with a default config and .env template",
	Long: `Create ~/.budzilla/budzilla.yaml (if missing) and ~/.budzilla/.env.

Put the password in .env as BUDZILLA_PASSWORD rather than in the YAML file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagInitAuthURL, "auth-url", "", "Login endpoint")
	initCmd.Flags().StringVar(&flagInitEntryURL, "entry-url", "", "Entry listing endpoint")
	initCmd.Flags().StringVar(&flagInitUsername, "username", "", "Account name (default "+config.DefaultUsername+")")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	homeDir, err := config.HomeDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(homeDir, 0o700); err != nil {
		return fmt.Errorf("cannot create %s: %w", homeDir, err)
	}
	printOK(fmt.Sprintf("Budzilla directory ready: %s", homeDir))

	cfgPath := flagConfig
	if cfgPath == "" {
		if cfgPath, err = config.ConfigPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		applyInitFlags(cfg)
		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}
		printOK(fmt.Sprintf("Config written: %s", cfgPath))
	} else if err != nil {
		return fmt.Errorf("cannot stat %s: %w", cfgPath, err)
	} else {
		printSkip(fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, _ := config.DotEnvPath()
	printOK(fmt.Sprintf("Secrets file ready: %s", envPath))

	fmt.Println()
	printInfo("set BUDZILLA_PASSWORD in the secrets file, then run 'budzilla doctor'")
	return nil
}

func applyInitFlags(cfg *config.Config) {
	if flagInitAuthURL != "" {
		cfg.AuthURL = flagInitAuthURL
	}
	if flagInitEntryURL != "" {
		cfg.EntryURL = flagInitEntryURL
	}
	if flagInitUsername != "" {
		cfg.Username = flagInitUsername
	}
}
