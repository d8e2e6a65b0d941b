package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/todo-extension/internal/credential"
	"github.com/nhle/todo-extension/internal/model"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write the effective configuration to --config. With --mailbox-password the
password is read from stdin and stored in the OS keyring under
mailbox.credential_key instead of the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(flagConfig); err == nil && !force {
			return fmt.Errorf("config %s already exists (use --force to overwrite)", flagConfig)
		}

		storePassword, _ := cmd.Flags().GetBool("mailbox-password")
		if storePassword {
			if err := savePassword(cmd, cfg); err != nil {
				return err
			}
		}

		if err := model.SaveConfig(flagConfig, cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", flagConfig)
		return nil
	},
}

func savePassword(cmd *cobra.Command, cfg *model.AppConfig) error {
	if cfg.Mailbox.CredentialKey == "" {
		cfg.Mailbox.CredentialKey = "mailbox-" + cfg.Mailbox.Username
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Mailbox password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fmt.Errorf("empty mailbox password")
	}

	if err := credential.New("").Set(cfg.Mailbox.CredentialKey, password); err != nil {
		return err
	}
	cfg.Mailbox.Password = ""
	fmt.Fprintln(cmd.OutOrStdout(), "stored mailbox password under", cfg.Mailbox.CredentialKey)
	return nil
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	initCmd.Flags().Bool("mailbox-password", false, "read the mailbox password from stdin into the keyring")
}
