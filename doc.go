// Package figmajsx converts one node of a Figma design file into a JSX template and a
// nested SCSS stylesheet.
//
// The CLI lives in cmd/figma-jsx; this root package exposes the same pipeline as a Go API
// so that callers can embed conversion in their own tools without shelling out.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named figmajsx:
//
//	import "github.com/kataras/figma-jsx" // package figmajsx
//
// # Quick start
//
//	result, err := figmajsx.Run(ctx, figmajsx.Options{
//	    DocumentPath:  "design.json",
//	    NodeName:      "Product Card",
//	    VariablesPath: "tokens.yml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("product_card.jsx", []byte(result.Markup), 0644)
//	os.WriteFile("product_card.scss", []byte(result.Stylesheet), 0644)
//
// Fetching from the API instead of a local file:
//
//	result, err := figmajsx.Run(ctx, figmajsx.Options{
//	    AccessToken: os.Getenv("FIGMA_TOKEN"),
//	    FileURL:     "https://www.figma.com/design/ABC123/Kit?node-id=12-34",
//	})
//
// The node ids in the URL select the target when neither NodeID nor NodeName is set.
//
// # Logging
//
// Pass a [Logger] in [Options.Logger] to receive progress messages; a *zap.SugaredLogger
// works as is. A nil Logger silences all output.
//
// # Selecting nodes
//
// Names are not unique in design files. When several nodes share NodeName and no Index is
// given, Run returns a *figma.AmbiguousNodeError listing the candidates in natural id order.
// Variant picks one component out of a component set by its properties:
//
//	figmajsx.Options{NodeName: "Button", Variant: "State=Hover, Size=Large"}
//
// # Output
//
// Every class in the markup has exactly one rule in the stylesheet, nested under the root
// class with the &_suffix form. Output is deterministic: the same document and options
// produce byte-identical results.
package figmajsx
