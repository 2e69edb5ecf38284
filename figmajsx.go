package figmajsx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/kataras/figma-jsx/pkg/converter"
	"github.com/kataras/figma-jsx/pkg/figma"
	"github.com/kataras/figma-jsx/pkg/variables"
)

// Options configures a conversion.
type Options struct {
	// Document source: a local JSON file, or a file URL fetched with AccessToken.
	DocumentPath string
	FileURL      string
	AccessToken  string
	Client       *figma.Client // nil = figma.NewClient(AccessToken)

	// Target node. NodeID wins over NodeName; node ids in FileURL are used when both are empty.
	NodeID   string
	NodeName string
	Variant  string // "Prop=Value, Prop=Value" inside a component set
	Index    int    // 1-based pick among same-named nodes

	RootClass     string
	VariablesPath string
	Variables     *variables.Map // wins over VariablesPath
	VariableStyle string
	Suppressions  []converter.Declaration // nil = converter.DefaultSuppressions
	LineWidth     int
	Indent        string

	DumpNode bool   // fill Result.NodeJSON
	Logger   Logger // nil = no logging
}

// Logger receives progress messages. *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the conversion output.
type Result struct {
	*converter.Result

	FileName string      // Figma file name
	Node     *figma.Node // converted node
	NodeJSON []byte      // the node's input JSON, indented, when Options.DumpNode is set
}

// Run loads the document, selects the target node and converts it.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	data, urlNodeIDs, err := loadDocument(ctx, &opts, log)
	if err != nil {
		return nil, err
	}
	file, err := figma.ParseFile(data)
	if err != nil {
		return nil, err
	}
	log.Debugf("Document %q loaded", file.Name)

	query := figma.Query{ID: opts.NodeID, Name: opts.NodeName, Variant: opts.Variant, Index: opts.Index}
	if query.ID == "" && query.Name == "" {
		if len(urlNodeIDs) == 0 {
			return nil, errors.New("no target node: set a node id or name")
		}
		if len(urlNodeIDs) > 1 {
			log.Warnf("URL references %d nodes, converting the first (%s)", len(urlNodeIDs), urlNodeIDs[0])
		}
		query.ID = urlNodeIDs[0]
	}

	target, err := figma.Find(&file.Document, query)
	if err != nil {
		return nil, fmt.Errorf("select node: %w", err)
	}
	log.Infof("Converting %q (%s, %s)", target.Name, target.ID, target.Type)

	vars, err := loadVariables(&opts, log)
	if err != nil {
		return nil, err
	}

	conv := converter.New(converter.Options{
		Variables:     vars,
		VariableStyle: opts.VariableStyle,
		Suppressions:  opts.Suppressions,
		LineWidth:     opts.LineWidth,
		Indent:        opts.Indent,
		Logger:        log,
	})
	converted, err := conv.Convert(&file.Document, target, opts.RootClass)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	log.Infof("Generated %d class(es) under .%s", len(converted.Classes), converted.RootClass)

	result := &Result{
		Result:   converted,
		FileName: file.Name,
		Node:     target,
	}
	if opts.DumpNode {
		raw, err := figma.RawNode(data, target.ID)
		if err != nil {
			return nil, fmt.Errorf("dump node: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return nil, fmt.Errorf("dump node: %w", err)
		}
		result.NodeJSON = buf.Bytes()
	}
	return result, nil
}

// loadDocument returns the document JSON and the node ids carried by a file URL.
func loadDocument(ctx context.Context, opts *Options, log Logger) ([]byte, []string, error) {
	switch {
	case opts.DocumentPath != "" && opts.FileURL != "":
		return nil, nil, errors.New("set either a document path or a file URL, not both")

	case opts.DocumentPath != "":
		log.Infof("Reading document %s...", opts.DocumentPath)
		data, err := os.ReadFile(opts.DocumentPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read document: %w", err)
		}
		return data, nil, nil

	case opts.FileURL != "":
		fileKey, err := figma.ExtractFileKey(opts.FileURL)
		if err != nil {
			return nil, nil, fmt.Errorf("extract file key: %w", err)
		}
		nodeIDs, err := figma.ExtractNodeIDs(opts.FileURL)
		if err != nil {
			return nil, nil, fmt.Errorf("extract node IDs from URL: %w", err)
		}

		client := opts.Client
		if client == nil {
			if opts.AccessToken == "" {
				return nil, nil, errors.New("an access token is required to fetch a file URL")
			}
			client = figma.NewClient(opts.AccessToken)
		}

		log.Infof("Fetching file %s from Figma...", fileKey)
		data, err := client.GetFileRaw(ctx, fileKey)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch file: %w", err)
		}
		return data, nodeIDs, nil
	}

	return nil, nil, errors.New("no document: set a document path or a file URL")
}

func loadVariables(opts *Options, log Logger) (*variables.Map, error) {
	if opts.Variables != nil || opts.VariablesPath == "" {
		return opts.Variables, nil
	}

	vars, err := variables.Load(opts.VariablesPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warnf("Variables file %s not found, using literal values", opts.VariablesPath)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded %d variable(s) from %s", vars.Len(), opts.VariablesPath)
	return vars, nil
}
