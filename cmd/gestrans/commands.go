package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gestrans/gestrans-backend/internal/carriers"
	"github.com/gestrans/gestrans-backend/internal/directory"
	"github.com/gestrans/gestrans-backend/pkg/auth"
	"github.com/gestrans/gestrans-backend/pkg/config"
	"github.com/gestrans/gestrans-backend/pkg/enums"
	"github.com/gestrans/gestrans-backend/pkg/logger"
)

// cliEnv holds the collaborators the commands resolve lazily, so that
// commands such as token and options run without a configured store.
type cliEnv struct {
	openService func(ctx context.Context) (carriers.Service, func() error, error)
	loadJWT     func() (config.JWTConfig, error)
	now         func() time.Time
	logg        *logger.Logger
}

type fieldFlag struct {
	name  string
	field string
	usage string
}

var textFlags = []fieldFlag{
	{"nif", carriers.FieldNIF, "tax number, 9 digits"},
	{"nome", carriers.FieldNome, "company name"},
	{"tipo", carriers.FieldTipo, "Transportador or Transitário"},
	{"telefone", carriers.FieldTelefone, "landline"},
	{"telemovel", carriers.FieldTelemovel, "mobile"},
	{"email", carriers.FieldEmail, "contact email"},
	{"contacto", carriers.FieldContactoPessoa, "contact person"},
	{"morada", carriers.FieldMorada, "street address"},
	{"codigo-postal", carriers.FieldCodigoPostal, "postal code"},
	{"localidade", carriers.FieldLocalidade, "town"},
	{"pais", carriers.FieldPais, "country"},
	{"observacoes", carriers.FieldObservacoes, "free notes"},
	{"outras-zonas", carriers.FieldOutrasZonas, "zones outside the fixed list"},
}

var setFlags = []fieldFlag{
	{"ambito", carriers.FieldAmbito, "scope, repeatable"},
	{"modalidade", carriers.FieldModalidades, "transport mode, repeatable"},
	{"tipo-servico", carriers.FieldTipoServico, "service type, repeatable"},
	{"tipo-carga", carriers.FieldTipoCarga, "cargo type, repeatable"},
	{"zona", carriers.FieldZonaCobertura, "coverage zone, repeatable"},
}

func newRootCmd(env *cliEnv) *cobra.Command {
	root := &cobra.Command{
		Use:           "gestrans",
		Short:         "Manage the carrier directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newListCmd(env),
		newShowCmd(env),
		newAddCmd(env),
		newEditCmd(env),
		newDeactivateCmd(env),
		newDeleteCmd(env),
		newOptionsCmd(),
		newTokenCmd(env),
	)
	return root
}

// withDirectory opens the store, builds a directory over it and optionally loads the list.
func withDirectory(cmd *cobra.Command, env *cliEnv, load bool, fn func(*directory.Directory) error) error {
	ctx := cmd.Context()
	svc, closeFn, err := env.openService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			env.logg.Error(ctx, "error closing carrier store", cerr)
		}
	}()
	dir, err := directory.New(svc, env.logg)
	if err != nil {
		return err
	}
	if load {
		if err := dir.Load(ctx); err != nil {
			return fmt.Errorf("loading carriers: %w", err)
		}
	}
	return fn(dir)
}

func newListCmd(env *cliEnv) *cobra.Command {
	var (
		criteria carriers.Criteria
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List carriers, active only unless --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDirectory(cmd, env, true, func(dir *directory.Directory) error {
				var rows []carriers.Carrier
				if all {
					rows = dir.Records()
				} else {
					dir.SetCriteria(criteria)
					rows = dir.Visible()
				}
				return printTable(cmd.OutOrStdout(), rows)
			})
		},
	}
	cmd.Flags().StringVar(&criteria.Kind, "tipo", enums.FilterAll, "carrier kind")
	cmd.Flags().StringVar(&criteria.ServiceType, "tipo-servico", enums.FilterAll, "service type")
	cmd.Flags().StringVar(&criteria.OriginZone, "origem", enums.FilterAll, "origin zone")
	cmd.Flags().StringVar(&criteria.DestinationZone, "destino", enums.FilterAll, "destination zone")
	cmd.Flags().BoolVar(&all, "all", false, "include inactive carriers and ignore filters")
	return cmd
}

func newShowCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one carrier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDirectory(cmd, env, true, func(dir *directory.Directory) error {
				id := strings.TrimSpace(args[0])
				for _, rec := range dir.Records() {
					if rec.ID == id {
						printCarrier(cmd.OutOrStdout(), rec)
						return nil
					}
				}
				return fmt.Errorf("carrier %s not found", id)
			})
		},
	}
}

func newAddCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a carrier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDirectory(cmd, env, false, func(dir *directory.Directory) error {
				if err := dir.OpenAdd(); err != nil {
					return err
				}
				if err := applyFlags(cmd, dir, directory.ModalAdd); err != nil {
					return err
				}
				rec, err := dir.SubmitAdd(cmd.Context())
				if err != nil {
					printFormErrors(cmd.ErrOrStderr(), dir.Modal(directory.ModalAdd))
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s\n", rec.ID, rec.Nome)
				return nil
			})
		},
	}
	registerFieldFlags(cmd)
	return cmd
}

func newEditCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a carrier; set flags replace the stored values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDirectory(cmd, env, true, func(dir *directory.Directory) error {
				if err := dir.OpenEdit(strings.TrimSpace(args[0])); err != nil {
					return err
				}
				if err := applyFlags(cmd, dir, directory.ModalEdit); err != nil {
					return err
				}
				if cmd.Flags().Changed("ativo") {
					ativo, _ := cmd.Flags().GetBool("ativo")
					if err := dir.SetField(directory.ModalEdit, carriers.FieldAtivo, strconv.FormatBool(ativo)); err != nil {
						return err
					}
				}
				rec, err := dir.SubmitEdit(cmd.Context())
				if err != nil {
					printFormErrors(cmd.ErrOrStderr(), dir.Modal(directory.ModalEdit))
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s\n", rec.ID, rec.Nome)
				return nil
			})
		},
	}
	registerFieldFlags(cmd)
	cmd.Flags().Bool("ativo", true, "active flag")
	return cmd
}

func newDeactivateCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Hide a carrier from the default listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDirectory(cmd, env, false, func(dir *directory.Directory) error {
				rec, err := dir.Deactivate(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deactivated %s %s\n", rec.ID, rec.Nome)
				return nil
			})
		},
	}
}

func newDeleteCmd(env *cliEnv) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently remove a carrier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			return withDirectory(cmd, env, false, func(dir *directory.Directory) error {
				if err := dir.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the accepted values of each multi-select field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := carriers.FormOptions()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", carriers.FieldTipo, strings.Join(opts.Tipos, ", "))
			fmt.Fprintf(out, "%s: %s\n", carriers.FieldAmbito, strings.Join(opts.Ambito, ", "))
			fmt.Fprintf(out, "%s: %s\n", carriers.FieldModalidades, strings.Join(opts.Modalidades, ", "))
			fmt.Fprintf(out, "%s: %s\n", carriers.FieldTipoServico, strings.Join(opts.TipoServico, ", "))
			fmt.Fprintf(out, "%s: %s\n", carriers.FieldTipoCarga, strings.Join(opts.TipoCarga, ", "))
			fmt.Fprintf(out, "%s: %s\n", carriers.FieldZonaCobertura, strings.Join(opts.ZonaCobertura, ", "))
			return nil
		},
	}
}

func newTokenCmd(env *cliEnv) *cobra.Command {
	var subject, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.loadJWT()
			if err != nil {
				return err
			}
			parsed, err := enums.ParseRole(role)
			if err != nil {
				return err
			}
			token, err := auth.MintAccessToken(cfg, env.now(), auth.AccessTokenPayload{
				Subject: subject,
				Role:    parsed,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "operator identity")
	cmd.Flags().StringVar(&role, "role", string(enums.RoleAdmin), "admin or viewer")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func registerFieldFlags(cmd *cobra.Command) {
	for _, f := range textFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	for _, f := range setFlags {
		cmd.Flags().StringArray(f.name, nil, f.usage)
	}
}

// applyFlags copies every flag the caller set into the open draft.
func applyFlags(cmd *cobra.Command, dir *directory.Directory, kind directory.ModalKind) error {
	flags := cmd.Flags()
	for _, f := range textFlags {
		if !flags.Changed(f.name) {
			continue
		}
		value, _ := flags.GetString(f.name)
		if err := dir.SetField(kind, f.field, value); err != nil {
			return fmt.Errorf("--%s: %w", f.name, err)
		}
	}
	for _, f := range setFlags {
		if !flags.Changed(f.name) {
			continue
		}
		values, _ := flags.GetStringArray(f.name)
		if err := dir.SetValues(kind, f.field, values); err != nil {
			return fmt.Errorf("--%s: %w", f.name, err)
		}
	}
	return nil
}

func printFormErrors(w io.Writer, view directory.ModalView) {
	if len(view.Errors) == 0 {
		return
	}
	keys := make([]string, 0, len(view.Errors))
	for k := range view.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, view.Errors[k])
	}
}

func printTable(w io.Writer, rows []carriers.Carrier) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOME\tTIPO\tTELEFONE\tEMAIL\tZONAS\tATIVO")
	for _, rec := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.Nome, rec.Tipo, rec.Telefone, rec.Email,
			strings.Join(rec.ZonaCobertura, ", "), yesNo(rec.Ativo))
	}
	return tw.Flush()
}

func printCarrier(w io.Writer, rec carriers.Carrier) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	line := func(k, v string) { fmt.Fprintf(tw, "%s:\t%s\n", k, v) }
	line("id", rec.ID)
	line(carriers.FieldNIF, rec.NIF)
	line(carriers.FieldNome, rec.Nome)
	line(carriers.FieldTipo, rec.Tipo)
	line(carriers.FieldTelefone, rec.Telefone)
	line(carriers.FieldTelemovel, rec.Telemovel)
	line(carriers.FieldEmail, rec.Email)
	line(carriers.FieldContactoPessoa, rec.ContactoPessoa)
	line(carriers.FieldMorada, rec.Morada)
	line(carriers.FieldCodigoPostal, rec.CodigoPostal)
	line(carriers.FieldLocalidade, rec.Localidade)
	line(carriers.FieldPais, rec.Pais)
	line(carriers.FieldAtivo, yesNo(rec.Ativo))
	line(carriers.FieldAmbito, strings.Join(rec.Ambito, ", "))
	line(carriers.FieldModalidades, strings.Join(rec.Modalidades, ", "))
	line(carriers.FieldTipoServico, strings.Join(rec.TipoServico, ", "))
	line(carriers.FieldTipoCarga, strings.Join(rec.TipoCarga, ", "))
	line(carriers.FieldZonaCobertura, strings.Join(rec.ZonaCobertura, ", "))
	line(carriers.FieldOutrasZonas, rec.OutrasZonas)
	line(carriers.FieldObservacoes, rec.Observacoes)
	_ = tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
