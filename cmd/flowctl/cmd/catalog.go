package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cognifloe/control-plane/internal/catalog"
	"github.com/cognifloe/control-plane/pkg/models"
)

type catalogOutput struct {
	Tags      []catalog.TagRule       `json:"tags"`
	Defaults  []*models.AgentTemplate `json:"defaults"`
	Templates []*models.AgentTemplate `json:"templates"`
}

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the agent template catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := catalog.Default()
			return render(cmd.OutOrStdout(), opts.output, catalogOutput{
				Tags:      c.Rules(),
				Defaults:  c.Defaults(),
				Templates: c.Templates(),
			})
		},
	}
}
