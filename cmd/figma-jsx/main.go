package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	figmajsx "github.com/kataras/figma-jsx"
	"github.com/kataras/figma-jsx/pkg/config"
	"github.com/kataras/figma-jsx/pkg/figma"
	"github.com/kataras/figma-jsx/pkg/variables"

	"github.com/fatih/color"
	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const version = "0.3.0"

// source flags shared by every command that reads a document.
type source struct {
	file  string
	url   string
	token string
}

func (s *source) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "Local Figma document JSON (from the file endpoint or a node dump)")
	cmd.Flags().StringVarP(&s.url, "url", "u", "", "Figma file URL")
	cmd.Flags().StringVarP(&s.token, "token", "t", "", "Figma Personal Access Token (default $FIGMA_TOKEN)")
}

func (s *source) accessToken() string {
	if s.token != "" {
		return s.token
	}
	return os.Getenv("FIGMA_TOKEN")
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "figma-jsx",
		Short:         "Convert Figma nodes into JSX and SCSS",
		Long:          "A tool to convert a node of a Figma design file into a JSX template and a nested SCSS stylesheet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newConvertCmd(), newFetchCmd(), newNodesCmd(), newVarsCmd(), newVersionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "figma-jsx version %s\n", version)
		},
	}
}

type convertFlags struct {
	source
	nodeName      string
	nodeID        string
	variant       string
	index         int
	rootClass     string
	vars          string
	outDir        string
	variableStyle string
	dumpNode      bool
	diff          bool
	configPath    string
	logLevel      string
}

func newConvertCmd() *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert one node into <name>.jsx and <name>.scss",
		Example: `  figma-jsx convert --file design.json --node "Product Card" --vars tokens.yml
  figma-jsx convert --url "https://www.figma.com/design/KEY/Kit?node-id=12-34" --out-dir src/card
  figma-jsx convert --file design.json --node Button --variant "State=Hover" --diff`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, &f)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&f.nodeName, "node", "n", "", "Name of the node to convert")
	cmd.Flags().StringVar(&f.nodeID, "node-id", "", "Id of the node to convert (wins over --node)")
	cmd.Flags().StringVar(&f.variant, "variant", "", `Variant inside a component set, e.g. "State=Hover, Size=Large"`)
	cmd.Flags().IntVar(&f.index, "index", 0, "1-based pick when several nodes share the name")
	cmd.Flags().StringVarP(&f.rootClass, "root-class", "r", "", "Class name of the root element (default: sanitized node name)")
	cmd.Flags().StringVar(&f.vars, "vars", "", "Variables file mapping names to variable ids (YAML or JSON)")
	cmd.Flags().StringVarP(&f.outDir, "out-dir", "o", ".", "Output directory")
	cmd.Flags().StringVar(&f.variableStyle, "variable-style", "scss", "Variable reference style: scss ($name) or css (var(--name))")
	cmd.Flags().BoolVar(&f.dumpNode, "dump-node", false, "Also write the selected node as <name>.node.json")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "Print a diff against the existing output files instead of writing")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Project configuration file")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "normal", "Log level: none, normal, debug")

	return cmd
}

// settings merges the config file with the flags the user set explicitly.
func (f *convertFlags) settings(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
		if cfg.Variables != "" && !filepath.IsAbs(cfg.Variables) {
			cfg.Variables = filepath.Join(filepath.Dir(f.configPath), cfg.Variables)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("root-class") {
		cfg.RootClass = f.rootClass
	}
	if flags.Changed("vars") {
		cfg.Variables = f.vars
	}
	if flags.Changed("out-dir") {
		cfg.OutDir = f.outDir
	}
	if flags.Changed("variable-style") {
		cfg.VariableStyle = f.variableStyle
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	return cfg, cfg.Validate()
}

func runConvert(cmd *cobra.Command, f *convertFlags) error {
	cfg, err := f.settings(cmd)
	if err != nil {
		return err
	}

	logger := config.NewLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck
	log := logger.Sugar()

	cyan := color.New(color.FgCyan)
	cyan.Println("\n🎨 Figma → JSX")
	cyan.Println("==============")
	cyan.Println()

	result, err := figmajsx.Run(cmd.Context(), figmajsx.Options{
		DocumentPath:  f.file,
		FileURL:       f.url,
		AccessToken:   f.accessToken(),
		NodeID:        f.nodeID,
		NodeName:      f.nodeName,
		Variant:       f.variant,
		Index:         f.index,
		RootClass:     cfg.RootClass,
		VariablesPath: cfg.Variables,
		VariableStyle: cfg.VariableStyle,
		Suppressions:  cfg.Suppressions(),
		LineWidth:     cfg.LineWidth,
		Indent:        cfg.Indent,
		DumpNode:      f.dumpNode,
		Logger:        log,
	})
	if err != nil {
		var ambiguous *figma.AmbiguousNodeError
		if errors.As(err, &ambiguous) {
			log.Errorf("Use --index or --node-id to pick one")
		}
		return err
	}

	name := outputName(result.RootClass)
	outputs := []output{
		{path: filepath.Join(cfg.OutDir, name+".jsx"), data: result.Markup},
		{path: filepath.Join(cfg.OutDir, name+".scss"), data: result.Stylesheet},
	}
	if f.dumpNode {
		outputs = append(outputs, output{path: filepath.Join(cfg.OutDir, name+".node.json"), data: string(result.NodeJSON) + "\n"})
	}

	printSummary(result)

	if f.diff {
		return printDiffs(outputs)
	}
	return writeOutputs(outputs)
}

func outputName(rootClass string) string {
	if s := slug.Make(rootClass); s != "" {
		return s
	}
	return "component"
}

func printSummary(result *figmajsx.Result) {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Println("\n📊 Conversion Summary:")
	if result.FileName != "" {
		fmt.Printf("  • File: %s\n", result.FileName)
	}
	fmt.Printf("  • Node: %s [%s] %s\n", result.Node.ID, result.Node.Type, result.Node.Name)
	fmt.Printf("  • Root class: .%s\n", result.RootClass)
	fmt.Printf("  • Classes: %d\n", len(result.Classes))
	if n := len(result.Collisions); n > 0 {
		yellow.Printf("  • Class collisions: %d\n", n)
		for _, c := range result.Collisions {
			yellow.Printf("      .%s: %s reuses %s\n", c.Class, c.Second, c.First)
		}
	}
}

type output struct {
	path string
	data string
}

func writeOutputs(outputs []output) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, o := range outputs {
		green.Printf("\n💾 Writing to %s... ", o.path)
		if err := writeFile(o.path, o.data); err != nil {
			red.Println("✗")
			return err
		}
		green.Println("✓")
	}
	green.Println("\n✨ Done")
	fmt.Println()
	return nil
}

func writeFile(path, data string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	if _, err := out.WriteString(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printDiffs(outputs []output) error {
	changed := 0
	for _, o := range outputs {
		existing, err := os.ReadFile(o.path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read %s: %w", o.path, err)
		}
		d := unifiedDiff(existing, []byte(o.data), o.path, o.path+" (generated)")
		if d == "" {
			continue
		}
		changed++
		printColoredDiff(d)
	}
	if changed == 0 {
		color.New(color.FgGreen).Println("\n✨ Output is up to date")
	}
	return nil
}

func newFetchCmd() *cobra.Command {
	var (
		src source
		out string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a Figma file as JSON for offline conversion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if src.url == "" {
				return errors.New("--url is required")
			}
			token := src.accessToken()
			if token == "" {
				return errors.New("--token or FIGMA_TOKEN is required")
			}
			fileKey, err := figma.ExtractFileKey(src.url)
			if err != nil {
				return err
			}

			color.New(color.FgYellow).Printf("Fetching file %s...\n", fileKey)
			data, err := figma.NewClient(token).GetFileRaw(cmd.Context(), fileKey)
			if err != nil {
				return fmt.Errorf("fetch file: %w", err)
			}

			if out == "" {
				out = slug.Make(fileKey) + ".json"
			}
			if err := writeFile(out, string(data)); err != nil {
				return err
			}
			color.New(color.FgGreen).Printf("✨ Saved %s (%d bytes)\n", out, len(data))
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default <file key>.json)")
	return cmd
}

// nodeKinds are the node types listed by "nodes" when no name is given.
var nodeKinds = map[string]bool{
	figma.TypeFrame:        true,
	figma.TypeComponent:    true,
	figma.TypeComponentSet: true,
}

func newNodesCmd() *cobra.Command {
	var (
		src  source
		name string
	)

	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List nodes by name with their ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadForListing(cmd.Context(), &src)
			if err != nil {
				return err
			}

			var nodes []*figma.Node
			if name != "" {
				nodes = figma.FindByName(&result.Document, name)
			} else {
				figma.Walk(&result.Document, func(n, _ *figma.Node) bool {
					if nodeKinds[n.Type] {
						nodes = append(nodes, n)
					}
					return true
				})
				sort.SliceStable(nodes, func(i, j int) bool {
					if nodes[i].Name != nodes[j].Name {
						return natural.Less(strings.ToLower(nodes[i].Name), strings.ToLower(nodes[j].Name))
					}
					return natural.Less(nodes[i].ID, nodes[j].ID)
				})
			}

			if len(nodes) == 0 {
				return figma.ErrNodeNotFound
			}
			cyan := color.New(color.FgCyan)
			for i, n := range nodes {
				cyan.Printf("%3d) %-14s", i+1, n.ID)
				fmt.Printf(" %-14s %s\n", n.Type, n.Name)
			}
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "Node name to look up (default: list frames and components)")
	return cmd
}

func loadForListing(ctx context.Context, src *source) (*figma.FileResponse, error) {
	if src.file != "" {
		return figma.LoadFile(src.file)
	}
	if src.url == "" {
		return nil, errors.New("--file or --url is required")
	}
	token := src.accessToken()
	if token == "" {
		return nil, errors.New("--token or FIGMA_TOKEN is required")
	}
	fileKey, err := figma.ExtractFileKey(src.url)
	if err != nil {
		return nil, err
	}
	return figma.NewClient(token).GetFile(ctx, fileKey)
}

func newVarsCmd() *cobra.Command {
	var (
		src      source
		nodeID   string
		existing string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "vars",
		Short: "Scaffold a variables file from the variable ids bound in a document",
		Long: "Lists every variable id bound in the document (or under --node-id) and writes a variables file " +
			"with a placeholder name for each id not already present in --vars. Rename the placeholders to the " +
			"names used by your stylesheet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadForListing(cmd.Context(), &src)
			if err != nil {
				return err
			}

			root := &file.Document
			if nodeID != "" {
				if root = figma.FindByID(root, nodeID); root == nil {
					return fmt.Errorf("%w: id %q", figma.ErrNodeNotFound, nodeID)
				}
			}

			var known *variables.Map
			if existing != "" {
				if known, err = variables.Load(existing); err != nil {
					return err
				}
			}

			merged, added, err := variables.Scaffold(known, variables.Collect(root))
			if err != nil {
				return err
			}
			data, err := merged.Marshal()
			if err != nil {
				return err
			}

			if out == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := writeFile(out, string(data)); err != nil {
				return err
			}
			color.New(color.FgGreen).Printf("✨ Wrote %s: %d variable(s), %d new\n", out, merged.Len(), len(added))
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&nodeID, "node-id", "", "Only scan the subtree of this node")
	cmd.Flags().StringVar(&existing, "vars", "", "Existing variables file to extend")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	return cmd
}

var _ figmajsx.Logger = (*zap.SugaredLogger)(nil)
