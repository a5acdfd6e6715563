/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/suparena/entity"
	"github.com/suparena/entity/codec"
	"github.com/suparena/entity/datastore/ddb"
	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/registry"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := entity.GetVersionInfo()
			out := cmd.OutOrStdout()
			if asJSON {
				b, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprintf(out, "entityctl version %s\n", info.Version)
			fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output version info as JSON")
	return cmd
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered entity types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range registry.TypeNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newAttrsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attrs <Type>",
		Short: "Show a type's attributes and their accessors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEntity(args[0])
			if err != nil {
				return err
			}
			info := registry.Lookup(reflect.TypeOf(e))

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ATTRIBUTE\tGETTER\tSETTER")
			for _, name := range info.Names() {
				acc, ok := info.Accessor(name)
				if !ok {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, orDash(acc.GetterName()), orDash(acc.SetterName()))
			}
			return w.Flush()
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type inputFlags struct {
	path   string
	format string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "in", "i", "-", "Input file, - for stdin")
	cmd.Flags().StringVar(&f.format, "from", "", "Input format (json, yaml, msgpack); guessed from the file extension when empty")
}

// load decodes the input into a new entity of the named type.
func (f *inputFlags) load(cmd *cobra.Command, typeName string) (entity.Entity, error) {
	e, err := newEntity(typeName)
	if err != nil {
		return nil, err
	}

	format, err := f.inputFormat()
	if err != nil {
		return nil, err
	}

	var data []byte
	if f.path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(f.path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input")
	}

	if err := codec.Unmarshal(data, format, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (f *inputFlags) inputFormat() (codec.Format, error) {
	switch {
	case f.format != "":
		return codec.ParseFormat(f.format)
	case f.path != "-":
		return codec.FormatFromPath(f.path)
	default:
		return codec.JSON, nil
	}
}

func outputFormat(flag string) (codec.Format, error) {
	if flag == "" && cfg != nil {
		flag = cfg.Output.Format
	}
	if flag == "" {
		return codec.JSON, nil
	}
	return codec.ParseFormat(flag)
}

func writeEntity(out io.Writer, e entity.Entity, flag string) error {
	format, err := outputFormat(flag)
	if err != nil {
		return err
	}
	b, err := codec.Marshal(e, format)
	if err != nil {
		return err
	}
	if _, err := out.Write(b); err != nil {
		return err
	}
	if format == codec.JSON {
		_, err = fmt.Fprintln(out)
	}
	return err
}

func newConvertCmd() *cobra.Command {
	var in inputFlags
	var to string
	cmd := &cobra.Command{
		Use:   "convert <Type>",
		Short: "Load a document into an entity and encode it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := in.load(cmd, args[0])
			if err != nil {
				return err
			}
			return writeEntity(cmd.OutOrStdout(), e, to)
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&to, "to", "t", "", "Output format (json, yaml, msgpack)")
	return cmd
}

func newDumpCmd() *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "dump <Type>",
		Short: "Print the Go value an input document loads into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := in.load(cmd, args[0])
			if err != nil {
				return err
			}
			dumper := spew.ConfigState{
				Indent:                  "  ",
				DisablePointerAddresses: true,
				DisableCapacities:       true,
				SortKeys:                true,
			}
			dumper.Fdump(cmd.OutOrStdout(), e)
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func newTable(cmd *cobra.Command) (*ddb.Table, error) {
	client, err := ddb.NewDynamoDBClient(cmd.Context(), cfg.AWS)
	if err != nil {
		return nil, err
	}
	return ddb.NewTable(client, cfg.AWS.Table), nil
}

func newPutCmd() *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "put <Type>",
		Short: "Store a document in DynamoDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := in.load(cmd, args[0])
			if err != nil {
				return err
			}
			table, err := newTable(cmd)
			if err != nil {
				return err
			}
			return table.Put(cmd.Context(), e)
		},
	}
	in.register(cmd)
	return cmd
}

func newGetCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "get <Type> <key>",
		Short: "Load an entity from DynamoDB",
		Long: `Load an entity from DynamoDB by key. When the type's PK and SK use several
attributes, join their values with "|", e.g. "7|2025-01-02T03:04:05.000Z".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := newTable(cmd)
			if err != nil {
				return err
			}
			e, err := table.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeEntity(cmd.OutOrStdout(), e, to)
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "Output format (json, yaml, msgpack)")
	return cmd
}

func newEntity(typeName string) (entity.Entity, error) {
	v, err := registry.NewByName(typeName)
	if err != nil {
		return nil, errors.NewValidationError("type", err.Error())
	}
	e, ok := v.(entity.Entity)
	if !ok {
		return nil, errors.NewValidationError("type", fmt.Sprintf("%s is not an entity", typeName))
	}
	entity.Init(e)
	return e, nil
}
