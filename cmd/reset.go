package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gentaprep/genta-tui/internal/store"
	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete local practice history",
	Long:  "Deletes the local SQLite history. Server-side progress is untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if !resetYes {
			fmt.Printf("Delete all local history at %s? [y/N] ", cfg.DBPath)
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read answer: %w", err)
			}
			if strings.ToLower(strings.TrimSpace(line)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open local store: %w", err)
		}
		defer func() { _ = st.Close() }()

		if err := st.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset store: %w", err)
		}
		fmt.Println("Local history cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Skip the confirmation prompt")
}
