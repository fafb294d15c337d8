package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialgap/app"
	"socialgap/internal"
	"socialgap/internal/config"
	"socialgap/internal/container"
	"socialgap/internal/report"
)

func main() {
	var demo bool

	rootCmd := &cobra.Command{
		Use:           "socialgap",
		Short:         "Eligibility and coverage-gap analysis over a census-style person table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&demo, "demo", false, "Use a generated population instead of DATA_SOURCE")

	load := func(ctx context.Context) (*container.Container, error) {
		return loadContainer(ctx, demo)
	}

	rootCmd.AddCommand(
		newCatalogCmd(),
		newRunCmd(load),
		newTranslateCmd(load),
		newQueryCmd(load),
		newServeCmd(load),
		newMCPCmd(load),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type loader func(ctx context.Context) (*container.Container, error)

func loadContainer(ctx context.Context, demo bool) (*container.Container, error) {
	_ = godotenv.Load()
	if demo {
		os.Setenv("DATA_SOURCE", config.SourceDemo)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the analysis functions and their arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			printCatalog(cmd.OutOrStdout())
			return nil
		},
	}
}

func printCatalog(w io.Writer) {
	for _, fn := range app.Catalog() {
		fmt.Fprintf(w, "%s\n  %s\n", fn.Name, fn.Description)
		for _, arg := range fn.Arguments {
			required := ""
			if arg.Required {
				required = " (required)"
			}
			fmt.Fprintf(w, "    --%s %s%s: %s\n", arg.Name, arg.Type, required, arg.Description)
		}
	}
}

func newRunCmd(load loader) *cobra.Command {
	var rawArgs string
	var format string

	cmd := &cobra.Command{
		Use:   "run [function]",
		Short: "Run one catalog function",
		Long: `Run one catalog function against the configured table.

Example: socialgap run eligibility-by-program --args '{"program":"pension_adultos_mayores","location":"Centro"}' --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs, err := app.ParseArguments([]byte(rawArgs))
			if err != nil {
				return err
			}
			c, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			result, err := c.Service.Call(cmd.Context(), args[0], callArgs)
			if err != nil {
				return printError(cmd.OutOrStdout(), err)
			}
			return printResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVar(&rawArgs, "args", "{}", "Function arguments as a JSON object")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or markdown")

	return cmd
}

func newTranslateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [query...]",
		Short: "Translate a free-text question into criteria and validate them against the table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())
			return printResult(cmd.OutOrStdout(), c.Service.Translate(strings.Join(args, " ")), "json")
		},
	}
}

func newQueryCmd(load loader) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "query [question...]",
		Short: "Translate a free-text question and run it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			result, err := c.Service.Query(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return printError(cmd.OutOrStdout(), err)
			}
			if format == report.FormatMarkdown {
				return printResult(cmd.OutOrStdout(), result.Result, format)
			}
			return printResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or markdown")
	return cmd
}

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the report viewer and the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())
			return serve(cmd.Context(), c)
		},
	}
}

func serve(ctx context.Context, c *container.Container) error {
	handler, err := c.HTTPHandler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              container.Addr(c.Config.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newMCPCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the catalog as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			s, err := c.MCPServer()
			if err != nil {
				return err
			}
			return s.ServeStdio()
		},
	}
}

func printResult(w io.Writer, result any, format string) error {
	if format == report.FormatMarkdown {
		if doc, ok := report.For(result); ok {
			_, err := io.WriteString(w, doc.Markdown())
			return err
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printError(w io.Writer, err error) error {
	if encErr := printResult(w, app.NewErrorResult(err), "json"); encErr != nil {
		return encErr
	}
	return err
}
