package commands

import (
	"net/http"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dosanma1/forge-sub000/internal/cli/ui"
	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

// presetMethods are the HTTP verbs shown next to each mode
var presetMethods = []string{
	http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodGet, http.MethodHead,
}

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List encoding modes and the flags they set",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			renderPresets(cmd)
		},
	}
}

func renderPresets(cmd *cobra.Command) {
	verbs := make(map[jsonapi.Mode][]string)
	for _, method := range presetMethods {
		if mode, err := jsonapi.ModeForMethod(method); err == nil {
			verbs[mode] = append(verbs[mode], method)
		}
	}

	noColor := color.NoColor
	table := ui.NewTable(cmd.OutOrStdout(),
		[]string{"MODE", "HTTP", "EMPTY ID", "EMPTY TIMESTAMPS", "MAP INCLUDED"},
		&ui.TableOptions{NoColor: noColor})

	for _, mode := range jsonapi.Modes() {
		name := mode.String()
		if mode == jsonapi.ClientCreate {
			name += " (default)"
		}
		table.AddRow(
			name,
			strings.Join(verbs[mode], ", "),
			ui.Mark(mode.MustHaveEmptyID(), noColor),
			ui.Mark(mode.MustHaveEmptyTimestamps(), noColor),
			ui.Mark(mode.MapIncluded(), noColor),
		)
	}
	table.Render()
}
