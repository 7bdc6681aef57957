package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/1broseidon/hatch/internal/backends"
	"github.com/1broseidon/hatch/internal/platform"
	"golang.org/x/term"
)

func runProbe(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hatch probe [--path PATH] [--platform NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Initialize the platform layer and report the selected backend.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	ctx, _, err := openContext(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer ctx.Terminate()

	fmt.Printf("platform:  %s\n", ctx.Platform())
	fmt.Printf("compiled:  %v\n", backends.Supported())
	fmt.Printf("monitors:  %d\n", len(ctx.Monitors()))
	fmt.Printf("raw_mouse: %v\n", ctx.RawMouseMotionSupported())
	if exts, err := ctx.RequiredInstanceExtensions(); err == nil {
		fmt.Printf("vulkan:    %v\n", exts)
	}
	return 0
}

type monitorInfo struct {
	ID        uint32             `json:"id"`
	Name      string             `json:"name"`
	Primary   bool               `json:"primary"`
	X         int                `json:"x"`
	Y         int                `json:"y"`
	WidthMM   int                `json:"width_mm"`
	HeightMM  int                `json:"height_mm"`
	ScaleX    float32            `json:"scale_x"`
	ScaleY    float32            `json:"scale_y"`
	Workarea  platform.Rect      `json:"workarea"`
	Mode      platform.VideoMode `json:"mode"`
	ModeCount int                `json:"mode_count"`
	GammaSize int                `json:"gamma_size,omitempty"`
}

func describeMonitors(ctx *platform.Context) []monitorInfo {
	primary := ctx.PrimaryMonitor()
	var out []monitorInfo
	for _, m := range ctx.Monitors() {
		info := monitorInfo{
			ID:      uint32(m.ID),
			Name:    m.Name,
			Primary: m == primary,
		}
		info.X, info.Y = m.Pos()
		info.WidthMM, info.HeightMM = m.PhysicalSize()
		info.ScaleX, info.ScaleY = m.ContentScale()
		info.Workarea = m.Workarea()
		if mode, err := m.VideoMode(); err == nil {
			info.Mode = mode
		}
		if modes, err := m.VideoModes(); err == nil {
			info.ModeCount = len(modes)
		}
		if ramp, err := m.GammaRamp(); err == nil {
			info.GammaSize = ramp.Size()
		}
		out = append(out, info)
	}
	return out
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := addCommonFlags(fs)
	asJSON := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	ctx, _, err := openContext(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer ctx.Terminate()

	infos := describeMonitors(ctx)
	if *asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	printMonitorTable(os.Stdout, infos)
	return 0
}

func printMonitorTable(w io.Writer, infos []monitorInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOS\tMODE\tSCALE\tWORKAREA\tSIZE")
	for _, m := range infos {
		name := m.Name
		if m.Primary {
			name += " *"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d,%d\t%dx%d@%d\t%.2f\t%dx%d+%d+%d\t%dx%dmm\n",
			m.ID, name, m.X, m.Y,
			m.Mode.Width, m.Mode.Height, m.Mode.RefreshRate,
			m.ScaleX,
			m.Workarea.Width, m.Workarea.Height, m.Workarea.X, m.Workarea.Y,
			m.WidthMM, m.HeightMM)
	}
	tw.Flush()
}
