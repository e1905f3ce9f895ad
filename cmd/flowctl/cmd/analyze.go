package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognifloe/control-plane/pkg/models"
)

type analyzeOutput struct {
	Source string                 `json:"source"`
	Result *models.AnalysisResult `json:"result"`
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	var (
		description string
		files       []string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Suggest agents and steps for a described process",
		Example: `  flowctl analyze --description "Process invoices from email" --file invoice.pdf
  flowctl analyze --description "Weekly sales report" --file sales.csv:text/csv -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(description) == "" && len(files) == 0 {
				return errors.New("--description or --file is required")
			}
			req := models.AnalysisRequest{Description: description}
			for _, f := range files {
				req.Files = append(req.Files, parseFileFlag(f))
			}

			out := opts.coordinator().Analyze(cmd.Context(), req)
			printAdvisory(cmd.ErrOrStderr(), out.Advisory())
			return render(cmd.OutOrStdout(), opts.output, analyzeOutput{
				Source: string(out.Source()),
				Result: out.Value(),
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "plain-language process description")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "attached file as name[:mime/type] (repeatable)")
	return cmd
}

// parseFileFlag splits "name[:type]". The suffix is only taken as a type
// when it looks like a MIME type.
func parseFileFlag(v string) models.FileDescriptor {
	if i := strings.LastIndex(v, ":"); i > 0 && strings.Contains(v[i+1:], "/") {
		return models.FileDescriptor{Name: v[:i], Type: v[i+1:]}
	}
	return models.FileDescriptor{Name: v}
}
