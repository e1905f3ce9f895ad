package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cognifloe/control-plane/pkg/models"
)

func newPredictCmd(opts *options) *cobra.Command {
	var (
		description string
		volume      int
		tier        string
	)
	cmd := &cobra.Command{
		Use:     "predict",
		Short:   "Forecast success probability and duration for a scenario",
		Example: `  flowctl predict --description "Reconcile bank statements" --volume 5000 --tier high`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if volume < 0 {
				return errors.New("--volume must not be negative")
			}
			s := models.PredictionScenario{
				Description:    description,
				Volume:         volume,
				ComplexityTier: models.ParseTier(tier),
			}
			out := opts.coordinator().Predict(cmd.Context(), s)
			printAdvisory(cmd.ErrOrStderr(), out.Advisory())

			res := out.Value()
			res.Source = string(out.Source())
			return render(cmd.OutOrStdout(), opts.output, res)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "scenario description")
	cmd.Flags().IntVar(&volume, "volume", 1000, "items processed per day")
	cmd.Flags().StringVar(&tier, "tier", string(models.TierMedium), "complexity tier (low, medium, high)")
	return cmd
}
