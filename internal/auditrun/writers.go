package auditrun

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

// writeBundle serializes the report bundle. The markdown report additionally
// lands next to the bundle as a .md file when writing to disk, so it can be
// read without unescaping.
func writeBundle(bundle *models.ReportBundle, path, format string) error {
	if err := writeAny(bundle, path, format); err != nil {
		return err
	}
	if path != "" && bundle.ReportMarkdown != "" {
		mdPath := path + ".md"
		if err := os.WriteFile(mdPath, []byte(bundle.ReportMarkdown+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write report markdown: %w", err)
		}
	}
	return nil
}

// writeAny serializes v as YAML or JSON to path, or stdout when path is empty.
func writeAny(v any, path, format string) error {
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = encodeJSON(v)
		if err == nil {
			data = append(data, '\n')
		}
	case "", "yaml":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
