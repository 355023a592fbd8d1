package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pets-provider/internal/adapters/storage/postgres"
	"pets-provider/internal/app"
	"pets-provider/internal/config"
	"pets-provider/internal/domain/pets"

	"github.com/spf13/cobra"
)

// newRootCmd arma el CLI. El App se construye con build al ejecutar el primer
// comando; el closer devuelto lo libera y hay que llamarlo siempre, también
// cuando el comando falla (cobra no corre los post-run en ese caso).
func newRootCmd(build func() (*app.App, error)) (*cobra.Command, func() error) {
	var a *app.App

	root := &cobra.Command{
		Use:           "petsctl",
		Short:         "Read and write pet records through the pets provider",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a != nil {
				return nil
			}
			built, err := build()
			if err != nil {
				return err
			}
			a = built
			return nil
		},
	}

	getApp := func() *app.App { return a }

	root.AddCommand(
		newTypeCmd(getApp),
		newQueryCmd(getApp),
		newInsertCmd(getApp),
		newUpdateCmd(getApp),
		newDeleteCmd(getApp),
		newMigrateCmd(getApp),
	)

	closeApp := func() error {
		if a == nil {
			return nil
		}
		return a.Close()
	}
	return root, closeApp
}

// appFromEnv arma el App con la config PETS_*; sin DSN el storage es en
// memoria y vive lo que dura el proceso.
func appFromEnv() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(app.Options{Config: cfg}), nil
}

func newTypeCmd(getApp func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "type <uri>",
		Short: "Print the content type of a URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := getApp().Provider.Type(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

type filterFlags struct {
	where string
	args  []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.where, "where", "", "filter expression with ? placeholders")
	cmd.Flags().StringArrayVar(&f.args, "arg", nil, "filter argument (repeatable, in order)")
}

// selectionArgs pasa los args como texto; cada storage los convierte según
// el tipo de la columna que comparan.
func (f *filterFlags) selectionArgs() []any {
	if len(f.args) == 0 {
		return nil
	}
	out := make([]any, 0, len(f.args))
	for _, a := range f.args {
		out = append(out, a)
	}
	return out
}

func newQueryCmd(getApp func() *app.App) *cobra.Command {
	var (
		filter  filterFlags
		columns []string
		order   string
	)

	cmd := &cobra.Command{
		Use:   "query <uri>",
		Short: "Print matching rows as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getApp().Provider.Query(cmd.Context(), args[0], columns, filter.where, filter.selectionArgs(), order)
			if err != nil {
				return err
			}
			defer c.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for c.Next() {
				if err := enc.Encode(c.Row()); err != nil {
					return err
				}
			}
			return c.Err()
		},
	}
	filter.register(cmd)
	cmd.Flags().StringSliceVar(&columns, "column", nil, "projected columns (default all)")
	cmd.Flags().StringVar(&order, "order", "", `sort order, e.g. "name ASC, _id DESC"`)
	return cmd
}

type valueFlags struct {
	set   []string
	nulls []string
}

func (v *valueFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&v.set, "set", nil, "column=value (repeatable)")
	cmd.Flags().StringArrayVar(&v.nulls, "null", nil, "column to set to NULL (repeatable)")
}

func (v *valueFlags) values() (pets.Values, error) {
	out := pets.Values{}
	for _, kv := range v.set {
		k, val, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, expected column=value", kv)
		}
		out[k] = val
	}
	for _, k := range v.nulls {
		out[strings.TrimSpace(k)] = nil
	}
	return out, nil
}

func newInsertCmd(getApp func() *app.App) *cobra.Command {
	var vals valueFlags

	cmd := &cobra.Command{
		Use:   "insert <uri>",
		Short: "Insert a pet and print its URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := vals.values()
			if err != nil {
				return err
			}
			uri, err := getApp().Provider.Insert(cmd.Context(), args[0], values)
			if err != nil {
				return err
			}
			if uri == "" {
				return errors.New("insert failed: no row created")
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		},
	}
	vals.register(cmd)
	return cmd
}

func newUpdateCmd(getApp func() *app.App) *cobra.Command {
	var (
		vals   valueFlags
		filter filterFlags
	)

	cmd := &cobra.Command{
		Use:   "update <uri>",
		Short: "Update pets and print the number of rows changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := vals.values()
			if err != nil {
				return err
			}
			n, err := getApp().Provider.Update(cmd.Context(), args[0], values, filter.where, filter.selectionArgs())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	vals.register(cmd)
	filter.register(cmd)
	return cmd
}

func newDeleteCmd(getApp func() *app.App) *cobra.Command {
	var filter filterFlags

	cmd := &cobra.Command{
		Use:   "delete <uri>",
		Short: "Delete pets and print the number of rows removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := getApp().Provider.Delete(cmd.Context(), args[0], filter.where, filter.selectionArgs())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	filter.register(cmd)
	return cmd
}

func newMigrateCmd(getApp func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the pets schema to the configured Postgres database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			if !a.Config.UsesPostgres() {
				return errors.New("migrate requires PETS_DATABASE_DSN")
			}
			return postgres.Migrate(cmd.Context(), a.Config.Database.DSN, a.Log)
		},
	}
}
