package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/auth"
	"github.com/gentaprep/genta-tui/internal/profile"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login [token]",
	Short: "Save an access token and verify it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		token := ""
		if len(args) == 1 {
			token = args[0]
		} else {
			fmt.Print("Access token: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read token: %w", err)
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return fmt.Errorf("no token given")
		}

		tokens := auth.NewFileStore(cfg.TokenPath)
		if err := tokens.Save(token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		client := api.New(cfg.APIBaseURL, tokens)
		user, err := profile.NewService(client).Me(ctx)
		if err != nil {
			return fmt.Errorf("verify token: %w", err)
		}

		name := user.Email
		if user.FullName != nil && *user.FullName != "" {
			name = fmt.Sprintf("%s (%s)", *user.FullName, user.Email)
		}
		fmt.Println("Signed in as", name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := auth.NewFileStore(cfg.TokenPath).Clear(); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}
