package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dosanma1/forge-sub000/internal/catalog"
	"github.com/dosanma1/forge-sub000/internal/cli/ui"
	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

var fieldKinds = []jsonapi.Kind{
	jsonapi.KindAttribute,
	jsonapi.KindNested,
	jsonapi.KindRelationship,
	jsonapi.KindMeta,
}

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types [type...]",
		Short: "Show the registered resource types and their field mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := catalog.NewRegistry()
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				names = reg.Types()
			}

			for _, name := range names {
				model, ok := reg.ModelType(name)
				if !ok {
					return report(cmd.ErrOrStderr(), ui.UnknownTypeError(name, reg.Types(), color.NoColor),
						fmt.Errorf("unknown resource type %q", name))
				}

				section := ui.NewSection(cmd.OutOrStdout(), fmt.Sprintf("%s (%s)", name, model), color.NoColor)
				for _, kind := range fieldKinds {
					for _, m := range reg.Lookup(model, kind) {
						section.AddLine(fmt.Sprintf("%-14s %s", m.Name, kind))
					}
				}
				section.Render()
			}
			return nil
		},
	}
}
