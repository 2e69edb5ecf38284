package converter

import (
	"regexp"
	"strings"

	"github.com/kataras/figma-jsx/pkg/figma"
)

var (
	invalidClassRun = regexp.MustCompile(`[^a-z0-9_-]+`)
	underscoreRun   = regexp.MustCompile(`_{2,}`)
	dashRun         = regexp.MustCompile(`-{2,}`)
)

// Sanitize turns an arbitrary layer name into a class-name fragment:
// lowercase, runs of characters outside [a-z0-9_-] collapsed to "_",
// repeated separators collapsed and leading/trailing separators stripped.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(name string) string {
	s := strings.ToLower(name)
	s = invalidClassRun.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "_-")
}

// ClassName returns the class for node. The root uses rootClass when given, otherwise its own
// name; every other node is namespaced as rootClass_name. Names that sanitize to nothing fall
// back to the node type.
func ClassName(node *figma.Node, isRoot bool, rootClass string) string {
	if isRoot {
		if c := Sanitize(rootClass); c != "" {
			return c
		}
		return nodeFragment(node)
	}
	return rootClass + "_" + nodeFragment(node)
}

func nodeFragment(node *figma.Node) string {
	if s := Sanitize(node.Name); s != "" {
		return s
	}
	if s := Sanitize(node.Type); s != "" {
		return s
	}
	return "node"
}
