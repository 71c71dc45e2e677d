package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	ConfigPath string
	StorePath  string
	Debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var logFile io.Closer

	cmd := &cobra.Command{
		Use:   "taskcanvas",
		Short: "Lay out tasks as a node graph in the terminal",
		Long: `taskcanvas shows tasks as boxes on a zoomable canvas and lets you
draw labeled arrows between them. Run without arguments for the canvas or use
the sub-commands to import and export flowcharts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			closer, err := setupLogging(opts.Debug || os.Getenv("TASKCANVAS_DEBUG") != "")
			if err != nil {
				return err
			}
			logFile = closer
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := opts.open()
			if err != nil {
				return err
			}
			p := tea.NewProgram(initialModel(store, cfg), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.taskcanvas.yaml)")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "store directory (overrides store_path)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "write debug logs to debug.log")

	addImport(cmd, opts)
	addExport(cmd, opts)
	return cmd
}

func (o *rootOptions) open() (*Config, Store, error) {
	cfg, err := LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if o.StorePath != "" {
		if cfg.StorePath, err = absPath(o.StorePath); err != nil {
			return nil, nil, err
		}
	}
	store, err := OpenStore(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("store opened", "path", cfg.StorePath)
	return cfg, store, nil
}

// setupLogging sends slog output to debug.log when debugging; otherwise it is
// discarded so nothing is written over the canvas.
func setupLogging(debug bool) (io.Closer, error) {
	if !debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil, nil
	}
	f, err := tea.LogToFile("debug.log", "taskcanvas")
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return f, nil
}

func addImport(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a Mermaid flowchart as tasks and connections",
		Example: `
taskcanvas import plan.mmd
pbpaste | taskcanvas import -
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			chart, ok := ParseFlowchart(flowchartSource(cleanClipboardText(string(data))))
			if !ok {
				return fmt.Errorf("%s: not a flowchart", args[0])
			}

			cfg, store, err := opts.open()
			if err != nil {
				return err
			}
			tasks, conns := ImportFlowchart(chart, cfg.DefaultAgent, "")
			if err := SaveImported(store, tasks, conns); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks, %d connections\n", len(tasks), len(conns))
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func parseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "txt", "text":
		return FormatTXT, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	}
	return 0, fmt.Errorf("unknown export format %q (want png, txt or mermaid)", s)
}

func addExport(topLevel *cobra.Command, opts *rootOptions) {
	var cols, rows int

	cmd := &cobra.Command{
		Use:       "export png|txt|mermaid FILE",
		Short:     "Export the canvas",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"png", "txt", "mermaid"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseExportFormat(args[0])
			if err != nil {
				return err
			}
			cfg, store, err := opts.open()
			if err != nil {
				return err
			}

			ctx := context.Background()
			tasks, err := store.Tasks(ctx)
			if err != nil {
				return err
			}
			conns, err := store.Connections(ctx)
			if err != nil {
				return err
			}
			AutoLayout(tasks)

			path, err := cfg.GetSavePath(args[1])
			if err != nil {
				return err
			}
			switch format {
			case FormatPNG:
				err = ExportPNG(path, tasks, conns)
			case FormatTXT:
				state := NewCanvasState()
				state.Connections = conns
				err = ExportTXT(path, tasks, state, cols, rows)
			case FormatMermaid:
				err = ExportMermaid(path, tasks, conns)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", path)
			return nil
		},
	}
	cmd.Flags().IntVar(&cols, "cols", 120, "text export width in columns")
	cmd.Flags().IntVar(&rows, "rows", 40, "text export height in rows")
	topLevel.AddCommand(cmd)
}
