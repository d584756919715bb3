package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gotasks/app"
	"gotasks/domain/core"
	"gotasks/domain/mapping"
	"gotasks/domain/sheet"
	"gotasks/internal"
	"gotasks/internal/config"
	"gotasks/internal/container"
	"gotasks/internal/importer"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gotasks",
		Short:         "Analyze and import task spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newImportCmd(),
		newFieldsCmd(),
		newFetchCmd(),
	)
	return rootCmd
}

// newContainer builds the import engine from the environment
func newContainer() (*container.Container, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	return container.New(cfg, logger)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseAssignments splits repeated Col=value flags. The column may not be
// empty; the value may.
func parseAssignments(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		col, val, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("expected Column=value, got %q", v)
		}
		out[col] = val
	}
	return out, nil
}

// parseMappings turns --map flags into a confirmation, rejecting unknown fields
func parseMappings(values []string) (mapping.Confirmation, error) {
	pairs, err := parseAssignments(values)
	if err != nil {
		return nil, err
	}
	confirmation := make(mapping.Confirmation, len(pairs))
	for col, field := range pairs {
		target := mapping.TargetField(field)
		if !target.IsNone() && !target.IsKnown() {
			return nil, fmt.Errorf("unknown target field %q for column %q", field, col)
		}
		confirmation[col] = target
	}
	return confirmation, nil
}

func newAnalyzeCmd() *cobra.Command {
	var maps []string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Propose a column mapping for a spreadsheet",
		Long: `Match every column of an xlsx or csv file to a task field and profile its sample values.

Example: gotasks analyze tasks.xlsx --map "Owner="`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmation, err := parseMappings(maps)
			if err != nil {
				return err
			}

			c, err := newContainer()
			if err != nil {
				return err
			}
			c.InitInMemory()

			decoded, err := c.Reader.ReadFile(args[0])
			if err != nil {
				return err
			}

			analysis, err := c.ImportService.Analyze(cmd.Context(), app.AnalyzeRequest{
				Headers:      decoded.Headers,
				SampleRows:   decoded.Rows,
				UserMappings: confirmation,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), analysis)
		},
	}

	cmd.Flags().StringArrayVar(&maps, "map", nil, "confirmed mapping Column=field (repeatable; empty field ignores the column)")
	return cmd
}

func newFetchCmd() *cobra.Command {
	var (
		sheetRange string
		token      string
	)

	cmd := &cobra.Command{
		Use:   "fetch <spreadsheet-id>",
		Short: "Fetch a Google Sheets range as headers and rows",
		Long: `Read a hosted Google spreadsheet. Without --token the GOOGLE_API_KEY
environment variable is used, which only reaches publicly shared sheets.

Example: gotasks fetch 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms --range "Tasks!A1:F200"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}

			if token == "" {
				token = os.Getenv("GOOGLE_ACCESS_TOKEN")
			}
			remote, err := c.FetchService.Fetch(cmd.Context(), sheet.RemoteRequest{
				SpreadsheetID: args[0],
				Range:         sheetRange,
				AccessToken:   token,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), remote)
		},
	}

	cmd.Flags().StringVar(&sheetRange, "range", "", "A1 range to read (default: first tab)")
	cmd.Flags().StringVar(&token, "token", "", "Google OAuth access token (default $GOOGLE_ACCESS_TOKEN)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		maps   []string
		filter string
		user   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import spreadsheet rows as tasks",
		Long: `Import the rows of an xlsx or csv file using a confirmed column mapping.

Example: gotasks import tasks.csv --map Task=title --map Due=dueDate --filter Area=Home`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmation, err := parseMappings(maps)
			if err != nil {
				return err
			}
			if len(confirmation) == 0 {
				return fmt.Errorf("at least one --map is required")
			}

			userID := core.DefaultUserID
			if user != "" {
				if userID, err = core.ParseUserID(user); err != nil {
					return err
				}
			}

			req := importer.Request{UserID: userID, Mappings: confirmation}
			if filter != "" {
				pairs, err := parseAssignments([]string{filter})
				if err != nil {
					return err
				}
				for col, val := range pairs {
					req.FilterColumn, req.FilterValue = col, val
				}
			}

			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if dryRun || c.Config.Database.URL == "" {
				c.InitInMemory()
			} else {
				db, err := sqlx.Connect("postgres", c.Config.Database.URL)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				if err := c.InitWithDatabase(db); err != nil {
					return err
				}
			}

			decoded, err := c.Reader.ReadFile(args[0])
			if err != nil {
				return err
			}
			req.Headers = decoded.Headers
			req.Rows = decoded.Rows

			report, err := c.ImportService.Import(cmd.Context(), req)
			if report != nil {
				if werr := writeJSON(cmd.OutOrStdout(), report); werr != nil {
					return werr
				}
			}
			return err
		},
	}

	cmd.Flags().StringArrayVar(&maps, "map", nil, "confirmed mapping Column=field (repeatable)")
	cmd.Flags().StringVar(&filter, "filter", "", "only import rows where Column=value (case-insensitive)")
	cmd.Flags().StringVar(&user, "user", "", "owning user ID (defaults to the single-user account)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and count rows without writing to the database")
	return cmd
}

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List importable task fields and their synonyms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			c.InitInMemory()
			return writeJSON(cmd.OutOrStdout(), c.ImportService.Fields())
		},
	}
}
