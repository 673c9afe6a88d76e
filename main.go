// chartkit renders chart descriptions to SVG.
//
// A description is a YAML file naming the chart type, its keys, optional
// configuration and the data. chartkit mounts the chart at the requested
// width, waits for any images, optionally replays a zoom brush, and writes
// the resulting SVG.
//
// Usage:
//
//	chartkit -spec chart.yaml [flags]
//
// Flags:
//
//	-spec string      Chart description (YAML)
//	-config string    Configuration file, TOML or YAML (default: $XDG_CONFIG_HOME/chartkit/config.toml)
//	-out string       Output file (default: stdout)
//	-width float      Container width in pixels (default 640)
//	-zoom string      Brush x0,y0,x1,y1 in chart pixels before writing
//	-inspect          Print a summary of the drawn chart to stderr
//	-list             List chart types and color schemes
//	-docs string      Write the documentation into a directory
//	-config-ref       Print the configuration reference
//	-defaults         Print the default configuration as TOML
//	-verbose          Enable verbose logging
//	-version          Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/charts"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/docs"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/theme"
)

var (
	version = "0.2.0"
	commit  = "dev"
	date    = "unknown"
)

// imageTimeout bounds the wait for raster images before writing.
const imageTimeout = 30 * time.Second

func main() {
	var (
		specPath    = flag.String("spec", "", "Chart description (YAML)")
		configPath  = flag.String("config", "", "Configuration file, TOML or YAML")
		outPath     = flag.String("out", "", "Output file (default: stdout)")
		width       = flag.Float64("width", 640, "Container width in pixels")
		zoom        = flag.String("zoom", "", "Brush x0,y0,x1,y1 in chart pixels before writing")
		inspect     = flag.Bool("inspect", false, "Print a summary of the drawn chart to stderr")
		list        = flag.Bool("list", false, "List chart types and color schemes")
		docsDir     = flag.String("docs", "", "Write the documentation into a directory")
		configRef   = flag.Bool("config-ref", false, "Print the configuration reference")
		defaults    = flag.Bool("defaults", false, "Print the default configuration as TOML")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("chartkit %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// User schemes are registered before anything resolves a color.
	if names, err := theme.LoadDir(config.SchemeDir()); err != nil {
		logger.Warn("failed to load color schemes", "dir", config.SchemeDir(), "error", err)
	} else if len(names) > 0 {
		logger.Debug("loaded color schemes", "schemes", names)
	}

	// Documentation commands don't need a chart.
	switch {
	case *list:
		printList(os.Stdout)
		return
	case *configRef:
		fmt.Print(docs.ConfigReference())
		return
	case *defaults:
		out, err := docs.DefaultsTOML()
		if err != nil {
			logger.Error("encode defaults", "error", err)
			os.Exit(1)
		}
		fmt.Print(out)
		return
	case *docsDir != "":
		if err := docs.Standard(*docsDir).Generate(); err != nil {
			logger.Error("docs generation failed", "error", err)
			os.Exit(1)
		}
		logger.Info("wrote documentation", "dir", *docsDir)
		return
	}

	if *specPath == "" {
		fmt.Fprintln(os.Stderr, "chartkit: -spec is required (see -h)")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := renderOptions{
		specPath:   *specPath,
		configPath: *configPath,
		outPath:    *outPath,
		width:      *width,
		zoom:       *zoom,
		inspect:    *inspect,
	}
	if err := run(ctx, opts, logger); err != nil {
		logger.Error("render failed", "error", err)
		os.Exit(1)
	}
}

type renderOptions struct {
	specPath   string
	configPath string
	outPath    string
	width      float64
	zoom       string
	inspect    bool
}

func run(ctx context.Context, opts renderOptions, logger *slog.Logger) error {
	spec, err := charts.LoadSpec(opts.specPath)
	if err != nil {
		return err
	}
	tmpl, err := spec.Template()
	if err != nil {
		return err
	}

	layers, err := fileLayers(opts.configPath, logger)
	if err != nil {
		return err
	}
	// Environment overrides sit above the file and below the description.
	layers = append(layers, config.Env())
	props, err := spec.Props(layers...)
	if err != nil {
		return err
	}

	var drawErr error
	c := chart.New(tmpl, props,
		chart.WithLogger(logger),
		chart.WithErrorHandler(func(err error) { drawErr = err }),
		chart.WithStateHook(func(from, to chart.State) {
			logger.Debug("chart state", "from", from, "to", to)
		}),
	)
	defer c.Destroy()

	if err := c.Mount(layout.Size{Width: opts.width}); err != nil {
		return err
	}
	if drawErr != nil {
		return drawErr
	}
	if c.State() != chart.Live {
		return fmt.Errorf("%s chart has nothing to draw", tmpl.Name())
	}

	waitCtx, cancel := context.WithTimeout(ctx, imageTimeout)
	defer cancel()
	if err := c.WaitImages(waitCtx); err != nil {
		logger.Warn("images still loading", "error", err)
	}
	c.Dispatch()

	if opts.zoom != "" {
		if err := applyZoom(c, opts.zoom); err != nil {
			return err
		}
	}
	// Writes see the end state of any transition.
	c.Surface().Flush()

	if opts.inspect {
		printSummary(os.Stderr, c)
	}
	return writeSVG(c, opts.outPath, logger)
}

// fileLayers returns the configuration file as a layer. Without an explicit
// path the standard location is used when it exists.
func fileLayers(path string, logger *slog.Logger) ([]config.Layer, error) {
	if path == "" {
		p, ok := config.FindFile()
		if !ok {
			return nil, nil
		}
		path = p
	}
	l, err := config.LoadLayer(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", path)
	return []config.Layer{l}, nil
}

// applyZoom replays a brush gesture over the rectangle "x0,y0,x1,y1".
func applyZoom(c *chart.Chart, spec string) error {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return fmt.Errorf("zoom: want x0,y0,x1,y1, got %q", spec)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("zoom: %w", err)
		}
		v[i] = f
	}
	if c.Brush() == nil {
		return errors.New("zoom: zooming is disabled; set theme.enable_zoom")
	}
	c.HandleEvent(chart.Event{Type: chart.PointerDown, X: v[0], Y: v[1]})
	c.HandleEvent(chart.Event{Type: chart.PointerMove, X: v[2], Y: v[3]})
	c.HandleEvent(chart.Event{Type: chart.PointerUp, X: v[2], Y: v[3]})
	if !c.Brush().Zoomed() {
		c.Logger().Warn("zoom: brush too small, domains unchanged")
	}
	return nil
}

func writeSVG(c *chart.Chart, path string, logger *slog.Logger) error {
	if path == "" {
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			logger.Warn("writing SVG to a terminal; use -out to write a file")
		}
		return c.Surface().WriteSVG(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.Surface().WriteSVG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote chart", "path", path, "type", c.Template().Name())
	return nil
}

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7C3AED"))

var labelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6B7280")).
	Width(12)

func printList(w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render("chart types"))
	for _, t := range charts.Types() {
		fmt.Fprintln(w, "  "+t)
	}
	fmt.Fprintln(w, titleStyle.Render("color schemes"))
	for _, n := range theme.Names() {
		fmt.Fprintf(w, "  %-12s %s\n", n, theme.Get(n).Kind)
	}
	fmt.Fprintln(w, titleStyle.Render("contour functions"))
	names := make([]string, 0, len(charts.Functions))
	for n := range charts.Functions {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(w, "  "+n)
	}
}

// printSummary describes the drawn chart: size, domains and primitives per
// layer.
func printSummary(w io.Writer, c *chart.Chart) {
	row := func(label, value string) {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
	}

	fmt.Fprintln(w, titleStyle.Render(c.Template().Name()+" chart"))
	size := c.Size()
	pw, ph := c.PlotSize()
	m := c.Margin()
	row("size", fmt.Sprintf("%gx%g (plot %gx%g)", size.Width, size.Height, pw, ph))
	row("margin", fmt.Sprintf("top %g right %g bottom %g left %g", m.Top, m.Right, m.Bottom, m.Left))
	row("x domain", c.DomainX().String())
	row("y domain", c.DomainY().String())
	row("records", strconv.Itoa(len(c.Data())))
	if b := c.Brush(); b != nil {
		row("zoomed", strconv.FormatBool(b.Zoomed()))
	}
	if l := c.Legend(); l != nil {
		row("legend", fmt.Sprintf("%d items, %d hidden", len(l.Items()), l.Hidden()))
	}

	e := c.Engine()
	for _, name := range e.Layers() {
		prims := e.PrimitivesByLayer(name)
		if len(prims) == 0 {
			continue
		}
		kinds := map[string]int{}
		for _, p := range prims {
			kinds[p.Kind().String()]++
		}
		keys := make([]string, 0, len(kinds))
		for k := range kinds {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s x%d", k, kinds[k])
		}
		row("layer "+name, strings.Join(parts, ", "))
	}
}
