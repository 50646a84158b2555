package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mesh-intelligence/contextref/pkg/model"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printDocument writes one document, as JSON or as "key: value" lines.
func printDocument(w io.Writer, jsonMode bool, doc *model.Document) error {
	if jsonMode {
		return printJSON(w, doc)
	}
	fmt.Fprintf(w, "%s %s\n", doc.ModelName(), doc.ID())
	writeFields(w, "  ", doc.Fields())
	return nil
}

// printDocuments writes a list of documents.
func printDocuments(w io.Writer, jsonMode bool, docs []*model.Document) error {
	if jsonMode {
		if docs == nil {
			docs = []*model.Document{}
		}
		return printJSON(w, docs)
	}
	for _, d := range docs {
		line := d.ID()
		if c := d.Context(); c.IsSet() {
			line += "  " + c.String()
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func writeFields(w io.Writer, indent string, f types.Fields) {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := f[k].(type) {
		case []any, []string:
			fmt.Fprintf(w, "%s%s: [%s]\n", indent, k, strings.Join(f.Strings(k), ", "))
		default:
			fmt.Fprintf(w, "%s%s: %v\n", indent, k, v)
		}
	}
}
