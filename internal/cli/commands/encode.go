package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dosanma1/forge-sub000/internal/catalog"
	"github.com/dosanma1/forge-sub000/internal/cli/ui"
	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

type encodeOptions struct {
	fixtures string
	typ      string
	id       string
	mode     string
	meta     []string
	pretty   bool
	dump     bool
}

func newEncodeCommand(g *globalOptions) *cobra.Command {
	opts := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode catalog fixtures as a JSON:API document",
		Long: `Load a YAML fixture file and print the JSON:API document of one resource,
or of every resource of a type when --id is omitted.

The mode defaults to encoder.default_mode from forge.yaml.`,
		Example: `  # Server response for one article with its related resources
  forge encode --fixtures catalog.yaml --type articles --id 1234 --mode server-read

  # Client create payload (no id, no timestamps)
  forge encode --fixtures catalog.yaml --type articles --id 1234

  # Collection with root meta, pretty printed
  forge encode --fixtures catalog.yaml --type comments --meta page=1 --pretty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.fixtures, "fixtures", "f", "", "YAML fixture file (default: fixtures from forge.yaml)")
	cmd.Flags().StringVarP(&opts.typ, "type", "t", "", "Resource type to encode")
	cmd.Flags().StringVar(&opts.id, "id", "", "Resource id; encodes the whole collection when empty")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Encoding mode (client-create, client-update, client-delete, server-read)")
	cmd.Flags().StringArrayVar(&opts.meta, "meta", nil, "Top-level meta entry as key=value; repeatable")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the JSON output")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "Print the Go document structure instead of JSON")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runEncode(cmd *cobra.Command, g *globalOptions, opts *encodeOptions) error {
	errOut := cmd.ErrOrStderr()
	cfg, err := g.loadConfig(errOut)
	if err != nil {
		return err
	}

	modeName := opts.mode
	if modeName == "" {
		modeName = cfg.Encoder.DefaultMode
	}
	mode, err := jsonapi.ParseMode(modeName)
	if err != nil {
		return report(errOut, ui.UnknownModeError(modeName, modeNames(), color.NoColor), err)
	}

	meta, err := parseMeta(opts.meta)
	if err != nil {
		return err
	}

	fixtures := opts.fixtures
	if fixtures == "" {
		fixtures = cfg.Fixtures
	}
	if fixtures == "" {
		return fmt.Errorf("no fixture file: pass --fixtures or set fixtures in forge.yaml")
	}

	reg, err := catalog.NewRegistry()
	if err != nil {
		return err
	}
	if _, ok := reg.ModelType(opts.typ); !ok {
		return report(errOut, ui.UnknownTypeError(opts.typ, reg.Types(), color.NoColor),
			fmt.Errorf("unknown resource type %q", opts.typ))
	}

	store, err := catalog.LoadFixturesFile(fixtures)
	if err != nil {
		return err
	}

	enc := jsonapi.NewEncoder(reg)
	encodeOpts := []jsonapi.Option{jsonapi.WithMode(mode), jsonapi.WithMeta(meta)}

	var doc *jsonapi.Document
	if opts.id != "" {
		res, ok := store.Get(opts.typ, opts.id)
		if !ok {
			return fmt.Errorf("resource %s/%s not found in %s", opts.typ, opts.id, fixtures)
		}
		doc, err = enc.Encode(res, encodeOpts...)
	} else {
		doc, err = enc.EncodeCollection(store.List(opts.typ), encodeOpts...)
	}
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.dump {
		dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
		dumper.Fdump(out, doc)
		return nil
	}

	var data []byte
	if opts.pretty || cfg.Encoder.Pretty {
		data, err = jsonapi.MarshalIndent(doc, "", "  ")
	} else {
		data, err = jsonapi.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// parseMeta turns key=value pairs into root meta; JSON literals keep their type
func parseMeta(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --meta %q: expected key=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		meta[key] = v
	}
	return meta, nil
}

func modeNames() []string {
	modes := jsonapi.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return names
}
