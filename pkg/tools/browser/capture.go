package browser

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/entrhq/pagewatch/pkg/changedetect"
)

// ArtifactWriter writes page captures. *Session implements it.
type ArtifactWriter interface {
	Screenshot(path string, fullPage bool) error
	Snapshot(path string) error
}

// WriteRecommended performs the captures a classification recommends and
// returns the written paths. The screenshot uses the suggested filename; the
// snapshot shares its stem with an .html extension.
func WriteRecommended(w ArtifactWriter, r changedetect.Result, dir string) ([]string, error) {
	var written []string

	if r.ShouldTakeScreenshot {
		path := filepath.Join(dir, r.SuggestedFilename)
		if err := w.Screenshot(path, true); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if r.ShouldTakeSnapshot {
		path := filepath.Join(dir, SnapshotFilename(r.SuggestedFilename))
		if err := w.Snapshot(path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// toMetadata flattens a JSON-tagged value into tool metadata.
func toMetadata(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return out, nil
}
