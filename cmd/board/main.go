package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mobil-koeln/moko-board/internal/board"
	"github.com/mobil-koeln/moko-board/internal/output"
	"github.com/mobil-koeln/moko-board/internal/server"
	"github.com/mobil-koeln/moko-board/internal/tui"
)

var version = "0.1.0"

const (
	watchInterval   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "board",
	Short: "Departure board for Berlin public transport stops",
	Long: `board aggregates real-time departures of a fixed set of VBB stops
into one board grouped by transport type (Bus, Tram, Subway, ...).

Configuration comes from the environment (BOARD_*, VBB_*, REDIS_ADDR,
LOG_LEVEL); flags override it.

Quick Start:
  1. Launch TUI:          board (or board tui)
  2. Print the board:     board show
  3. Serve the dashboard: board serve --addr :5000
  4. Find a stop ID:      board search "Bernauer Str"`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runTUI(cmd, args)
		}
		return cmd.Help()
	},
}

// Global flags
var (
	flagStations string
	flagPolicy   string
	flagWindow   int
	flagCache    string
	flagDebug    bool
	flagColor    string
	flagJSON     bool
	flagRawJSON  bool
)

// Command flags
var (
	flagAddr   string
	flagStatic string
	flagWatch  bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagStations, "stations", "", "YAML station registry (default: built-in Berlin stops)")
	pf.StringVar(&flagPolicy, "policy", "", "Failure policy: closed or partial")
	pf.IntVar(&flagWindow, "window", 0, "Aggregation window in minutes")
	pf.StringVar(&flagCache, "cache", "", "Response cache: none, file or redis")
	pf.BoolVar(&flagDebug, "debug", false, "Log per-record decisions")
	pf.StringVar(&flagColor, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")
	pf.BoolVar(&flagRawJSON, "raw-json", false, "Output raw API response")

	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default :5000)")
	serveCmd.Flags().StringVar(&flagStatic, "static", "", "Directory with logo assets served under /static/")

	showCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Watch mode: refresh every 30 seconds")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTML dashboard and JSON API",
	Long: `Serve the departure board over HTTP.

Routes:
  GET /                 HTML dashboard, refreshes every 30 seconds
  GET /api/departures   grouped board as JSON
  GET /stations?query=  station search, proxied to the upstream API
  GET /healthz          liveness check`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the aggregated departure board",
	Long: `Print the aggregated departure board, grouped by transport type.

Examples:
  board show
  board show --watch
  board show --json
  board show --raw-json
  board show --policy partial --window 30

A failed fetch under the closed policy prints an empty board. --raw-json
prints the upstream response of every stop once and ignores --watch.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stops by name",
	Long: `Search stops by name to find the IDs for a stations file.

Examples:
  board search "Bernauer Str"
  board search Voltastr --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the live full-screen board",
	Long: `Open the live full-screen board.

Keys:
  Tab / Shift+Tab  Next / previous group
  j / k            Move through departures
  r                Refresh now
  a                Toggle auto-refresh (30 seconds)
  /                Find a stop ID
  Esc              Go back
  q                Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "board version %s\n", version)
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := server.New(app.cfg.Server, app.service, app.client, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Println("shutdown signal received")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func runShow(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	colors := output.NewColors(output.ParseColorMode(flagColor))
	w := cmd.OutOrStdout()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if flagRawJSON {
		return printRawDepartures(ctx, cmd, app)
	}

	render := func(ctx context.Context) error {
		report, err := app.service.Build(ctx)
		// A failed fetch shows as an empty board; the service has logged it
		if err != nil && !errors.Is(err, board.ErrFetchFailed) {
			return err
		}
		if flagJSON {
			return printJSON(cmd, server.NewDeparturesDocument(report))
		}
		output.RenderBoard(w, report.Result, output.TableOptions{
			Colors:      colors,
			ShowStop:    true,
			GeneratedAt: report.GeneratedAt,
		})
		return nil
	}

	if flagWatch {
		return output.Watch(ctx, w, cmd.ErrOrStderr(), watchInterval, render)
	}
	return render(ctx)
}

func runSearch(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	query := args[0]

	if flagRawJSON {
		raw, err := app.client.SearchStationsRaw(ctx, query)
		if err != nil {
			return err
		}
		return printPrettyJSON(cmd, raw)
	}

	locations, err := app.client.SearchLocations(ctx, query)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd, locations)
	}

	output.RenderLocations(cmd.OutOrStdout(), locations, output.TableOptions{
		Colors: output.NewColors(output.ParseColorMode(flagColor)),
	})
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Log lines would tear the alt screen
	app, err := bootstrap(cmd, io.Discard)
	if err != nil {
		return err
	}
	defer app.Close()

	model := tui.New(app.service, app.client)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stopResponse pairs a stop with its unprocessed upstream response
type stopResponse struct {
	Stop     string          `json:"stop"`
	Response json.RawMessage `json:"response"`
}

// printRawDepartures dumps the upstream departures of every board stop
func printRawDepartures(ctx context.Context, cmd *cobra.Command, app *app) error {
	stopIDs := app.service.StopIDs()
	out := make([]stopResponse, 0, len(stopIDs))
	for _, id := range stopIDs {
		raw, err := app.client.GetDeparturesRaw(ctx, id, app.service.Window())
		if err != nil {
			return fmt.Errorf("stop %s: %w", id, err)
		}
		if !json.Valid(raw) {
			return fmt.Errorf("stop %s: upstream returned invalid JSON", id)
		}
		out = append(out, stopResponse{Stop: id, Response: raw})
	}
	return printJSON(cmd, out)
}

func printPrettyJSON(cmd *cobra.Command, data []byte) error {
	var pretty any
	if err := json.Unmarshal(data, &pretty); err != nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return errors.Join(errors.New("upstream returned invalid JSON"), err)
	}
	return printJSON(cmd, pretty)
}
