package cmd

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognifloe/control-plane/internal/catalog"
	"github.com/cognifloe/control-plane/internal/insights"
	"github.com/cognifloe/control-plane/internal/workflow"
	"github.com/cognifloe/control-plane/pkg/models"
)

func newInsightsCmd(opts *options) *cobra.Command {
	var (
		description string
		steps       []string
	)
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Report complexity, bottlenecks, risks and savings for a workflow",
		Long: `Report complexity, bottlenecks, risks and savings for a workflow.

Without --step the steps are synthesized locally from the description.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(description) == "" {
				return errors.New("--description is required")
			}
			if len(steps) == 0 {
				res := workflow.NewAnalyzer(catalog.Default()).Analyze(models.AnalysisRequest{Description: description})
				steps = res.WorkflowSteps
			}
			return render(cmd.OutOrStdout(), opts.output, insights.Analyze(description, steps))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "process description")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "workflow step (repeatable, in order)")
	return cmd
}

func newDetectCmd(opts *options) *cobra.Command {
	var m models.ExecutionMetrics
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Check execution metrics against the anomaly baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case m.CompletionHours < 0 || m.AgentCount < 0 || m.ErrorCount < 0:
				return errors.New("--hours, --agents and --errors must not be negative")
			case m.SuccessRate < 0 || m.SuccessRate > 1:
				return errors.New("--success-rate must be between 0 and 1")
			}
			m.Timestamp = time.Now().UTC()
			return render(cmd.OutOrStdout(), opts.output, insights.DetectAnomalies(m))
		},
	}
	cmd.Flags().Float64Var(&m.CompletionHours, "hours", insights.DefaultBaseline.AvgCompletionHours, "completion time in hours")
	cmd.Flags().IntVar(&m.AgentCount, "agents", 3, "number of agents used")
	cmd.Flags().Float64Var(&m.SuccessRate, "success-rate", insights.DefaultBaseline.SuccessRate, "success rate (0-1)")
	cmd.Flags().IntVar(&m.ErrorCount, "errors", 0, "errors observed")
	return cmd
}
