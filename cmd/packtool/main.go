// packtool is a CLI utility for inspecting and editing the asset packs of
// a project.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli"

	"github.com/Faultbox/packstudio/internal/config"
	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/debug"
	"github.com/Faultbox/packstudio/internal/files"
	"github.com/Faultbox/packstudio/internal/logger"
	"github.com/Faultbox/packstudio/internal/pack"
	pviewers "github.com/Faultbox/packstudio/internal/pack/viewers"
)

func main() {
	app := cli.NewApp()

	app.Name = "packtool"
	app.Usage = "asset pack utility"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "project, p",
			Value: ".",
			Usage: "project root `DIR`",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load configuration from `FILE`",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "info",
			Usage:     "Show the packs of the project and their items",
			ArgsUsage: "[pack.json]",
			Action:    cmdInfo,
		},
		{
			Name:      "frames",
			Aliases:   []string{"ls"},
			Usage:     "List the frames of an item",
			ArgsUsage: "<key>",
			Action:    cmdFrames,
		},
		{
			Name:      "types",
			Usage:     "Show the content type of every project file",
			ArgsUsage: "[pattern]",
			Action:    cmdTypes,
		},
		{
			Name:      "render",
			Usage:     "Render a pack grid to a PNG file",
			ArgsUsage: "<pack.json> <output.png>",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "width", Value: 800, Usage: "image width"},
				cli.IntFlag{Name: "height", Value: 600, Usage: "image height"},
				cli.IntFlag{Name: "cell-size", Value: pviewers.PackCellSize, Usage: "cell size in pixels"},
				cli.BoolFlag{Name: "expand", Usage: "expand every frame container"},
				cli.StringFlag{Name: "filter", Usage: "filter text"},
			},
			Action: cmdRender,
		},
		{
			Name:      "add",
			Usage:     "Import files into a pack",
			ArgsUsage: "<pack.json> <file>...",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "type, t", Usage: "item type (default: first importer accepting the file)"},
				cli.BoolFlag{Name: "dry-run, n", Usage: "print the manifest instead of writing it"},
			},
			Action: cmdAdd,
		},
	}

	app.Before = setup

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	cfg, err := config.LoadFile(c.GlobalString("config"))
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if c.GlobalBool("debug") {
		level = "debug"
	} else if level == "info" {
		level = "warn"
	}
	return logger.Init(level, cfg.Logging.LogFile)
}

// workspace is an opened project with its packs loaded.
type workspace struct {
	project *files.Project
	finder  *pack.PackFinder
}

func openWorkspace(ctx context.Context, c *cli.Context) (*workspace, error) {
	project, err := files.OpenProject(c.GlobalString("project"))
	if err != nil {
		return nil, err
	}
	pack.RegisterContentTypes(project.ContentTypes(), project.Storage())
	finder := pack.NewPackFinder(project)
	finder.Preload(ctx)
	return &workspace{project: project, finder: finder}, nil
}

func (w *workspace) pack(url string) (*pack.AssetPack, error) {
	p := w.finder.Pack(url)
	if p == nil {
		return nil, fmt.Errorf("no asset pack at %s", url)
	}
	return p, nil
}

func cmdInfo(c *cli.Context) error {
	ctx := context.Background()
	w, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}

	packs := w.finder.Packs()
	if c.NArg() > 0 {
		p, err := w.pack(c.Args().First())
		if err != nil {
			return err
		}
		packs = []*pack.AssetPack{p}
	}

	fmt.Printf("Project: %s\n", w.project.Dir())
	fmt.Printf("Packs:   %d\n", len(packs))
	for _, p := range packs {
		fmt.Println()
		fmt.Printf("%s (%d items)\n", p.URL(), len(p.Items()))
		for _, t := range p.Types() {
			items := p.ItemsOfType(t)
			fmt.Printf("  %-20s %d\n", t, len(items))
			for _, item := range items {
				frames := ""
				if item.IsImageFrameContainer() {
					frames = fmt.Sprintf(" [%d frames]", len(item.Frames()))
				}
				fmt.Printf("    %s%s\n", item.Key(), frames)
			}
		}
	}
	return nil
}

func cmdFrames(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("Usage: packtool frames <key>", 1)
	}
	ctx := context.Background()
	w, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}

	key := c.Args().First()
	item := w.finder.FindAssetPackItem(key)
	if item == nil {
		return fmt.Errorf("no item with key %q", key)
	}
	if !item.IsImageFrameContainer() {
		return fmt.Errorf("item %q (%s) has no frames", key, item.Type())
	}

	fmt.Printf("%s (%s) in %s\n", item.Key(), item.Type(), item.Pack().URL())
	for _, f := range item.Frames() {
		d := f.FrameData()
		fmt.Printf("  %4d  %-24s src=%v,%v %vx%v  dst=%v,%v %vx%v  size=%vx%v\n",
			d.Index, f.Name(),
			d.Src.X, d.Src.Y, d.Src.W, d.Src.H,
			d.Dst.X, d.Dst.Y, d.Dst.W, d.Dst.H,
			d.SrcSize.X, d.SrcSize.Y)
	}
	return nil
}

func cmdTypes(c *cli.Context) error {
	ctx := context.Background()
	project, err := files.OpenProject(c.GlobalString("project"))
	if err != nil {
		return err
	}
	pack.RegisterContentTypes(project.ContentTypes(), project.Storage())

	pattern := c.Args().First()
	counts := make(map[string]int)
	for _, f := range project.Root().FlatFiles() {
		if pattern != "" {
			if ok, _ := filepath.Match(pattern, f.Name()); !ok {
				continue
			}
		}
		ct := project.ContentTypes().ContentType(ctx, f)
		counts[ct]++
		fmt.Printf("%-48s %s\n", f.URL(), shortType(ct))
	}

	fmt.Println()
	fmt.Println("Files by type:")
	type typeStat struct {
		ct    string
		count int
	}
	var stats []typeStat
	for ct, count := range counts {
		stats = append(stats, typeStat{ct, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].ct < stats[j].ct
	})
	for _, s := range stats {
		fmt.Printf("  %-24s %d\n", shortType(s.ct), s.count)
	}
	return nil
}

// shortType drops the namespace of a content type id.
func shortType(ct string) string {
	if i := strings.LastIndexByte(ct, '.'); i >= 0 {
		return ct[i+1:]
	}
	return ct
}

func cmdRender(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.NewExitError("Usage: packtool render <pack.json> <output.png>", 1)
	}
	ctx := context.Background()
	w, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}
	p, err := w.pack(c.Args().Get(0))
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(c.GlobalString("config"))
	if err != nil {
		return err
	}

	canvas := controls.NewRasterCanvas(c.Int("width"), c.Int("height"))
	v := pviewers.NewAssetPackViewer("render", func() *pack.AssetPack { return p }, cfg.Viewer.GroupAtlasItems)
	v.SetCellSize(float32(c.Int("cell-size")))
	if c.Bool("expand") {
		for _, item := range p.Items() {
			if item.IsImageFrameContainer() && item.Type() != pack.ImageType {
				v.SetExpanded(item, true)
			}
		}
	}
	if text := c.String("filter"); text != "" {
		v.SetFilterText(text)
	}

	// The first paint lays out the visible cells; the second shows what
	// their preload loaded.
	v.Paint(canvas)
	if v.PreloadVisible(ctx) == controls.ResourcesLoaded {
		v.Paint(canvas)
	}

	out := c.Args().Get(1)
	if err := debug.WritePNG(out, canvas.Image()); err != nil {
		return err
	}
	fmt.Printf("Rendered %s to %s\n", p.URL(), out)
	return nil
}

func cmdAdd(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.NewExitError("Usage: packtool add <pack.json> <file>...", 1)
	}
	ctx := context.Background()
	w, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}
	packURL := c.Args().First()
	p := w.finder.Pack(packURL)
	if p == nil {
		p = pack.NewAssetPack(packURL, "", w.finder.Source())
	}

	types := w.project.ContentTypes()
	for _, url := range c.Args().Tail() {
		f := w.project.File(url)
		if f == nil || !f.IsFile() {
			return fmt.Errorf("no file at %s", url)
		}
		types.ContentType(ctx, f)

		im, err := importerFor(c.String("type"), f, types)
		if err != nil {
			return err
		}
		item, err := im.ImportFile(ctx, p, f, types)
		if err != nil {
			return fmt.Errorf("importing %s: %w", url, err)
		}
		fmt.Printf("Added %s as %s (%s)\n", url, item.Key(), item.Type())
	}

	data, err := p.ToJSON()
	if err != nil {
		return err
	}
	if c.Bool("dry-run") {
		fmt.Println(string(data))
		return nil
	}
	path, err := w.project.Storage().Path(packURL)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func importerFor(itemType string, f *files.FilePath, types *files.ContentTypeRegistry) (*pack.Importer, error) {
	if itemType != "" {
		im := pack.ImporterFor(itemType)
		if im == nil {
			return nil, fmt.Errorf("unknown item type %q", itemType)
		}
		if !im.AcceptFile(f, types) {
			return nil, fmt.Errorf("%s cannot be imported as %s", f.URL(), itemType)
		}
		return im, nil
	}
	for _, im := range pack.Importers {
		if im.AcceptFile(f, types) {
			return im, nil
		}
	}
	return nil, fmt.Errorf("no importer accepts %s (%s)", f.URL(), types.CachedContentType(f))
}
