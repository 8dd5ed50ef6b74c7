package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/auth"
	"github.com/gentaprep/genta-tui/internal/readiness"
	"github.com/gentaprep/genta-tui/internal/section"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print your readiness per section",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		client := api.New(cfg.APIBaseURL, auth.NewFileStore(cfg.TokenPath))
		overview, err := readiness.NewService(client).Overview(ctx)
		if err != nil {
			if errors.Is(err, auth.ErrNoToken) {
				return fmt.Errorf("not signed in, run: genta login")
			}
			return fmt.Errorf("fetch readiness: %w", err)
		}

		fmt.Printf("Kesiapan keseluruhan: %.0f%%  (TPS %.0f%%, Literasi %.0f%%)\n",
			overview.OverallReadiness, overview.TPSReadiness, overview.LiterasiReadiness)
		fmt.Printf("Soal dijawab: %d, benar %d (%.0f%%)\n\n",
			overview.TotalAttempts, overview.TotalCorrect, overview.OverallAccuracy*100)

		for _, sec := range section.All {
			r, ok := overview.SectionReadiness[sec]
			if !ok {
				continue
			}
			fmt.Printf("%-4s %-32s %3.0f%%  θ %+.2f → %+.2f  skor %d-%d\n",
				sec, r.Section.Name(), r.ReadinessPercentage,
				r.CurrentTheta, r.TargetTheta,
				r.PredictedScoreLow, r.PredictedScoreHigh)
		}

		if overview.RecommendedSection != nil {
			fmt.Printf("\nSaran latihan berikutnya: %s\n", overview.RecommendedSection.Name())
		}
		return nil
	},
}
