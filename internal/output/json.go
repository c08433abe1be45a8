package output

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spiffcs/engage/internal/model"
)

// ResponseFileName is the file written when results are saved to disk.
const ResponseFileName = "engagement-response.json"

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format writes the engagement response as JSON
func (f *JSONFormatter) Format(resp *model.EngagementResponse, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(resp)
}

// WriteResponseFile saves the response to dir and returns the file path.
// The file is always indented so it stays diffable across runs.
func WriteResponseFile(resp *model.EngagementResponse, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, ResponseFileName)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	formatter := &JSONFormatter{Pretty: true}
	if err := formatter.Format(resp, file); err != nil {
		return "", err
	}
	return path, nil
}
