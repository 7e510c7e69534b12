package standards

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/deal-analyzer/internal/model"
)

// fileClient serves benchmarks from a local YAML table instead of the
// remote service. Useful offline and in tests; entries are keyed by ZIP
// prefix with an optional "default" entry.
type fileClient struct {
	entries map[string]*model.StandardsContext
}

// NewFileClient loads a YAML benchmark table from path. The file maps ZIP
// prefixes (1-5 digits) to benchmark contexts:
//
//	"62":      {location: "Central Illinois", rent_pct: {min: 8, max: 15}, ...}
//	"default": {location: "US National", ...}
func NewFileClient(path string) (Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "standards: read %s", path)
	}

	var entries map[string]*model.StandardsContext
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "standards: parse %s", path)
	}

	return &fileClient{entries: entries}, nil
}

func (c *fileClient) Lookup(_ context.Context, zip string) (*model.StandardsContext, error) {
	// Longest-prefix match, then the default entry.
	for l := len(zip); l > 0; l-- {
		if sc, ok := c.entries[zip[:l]]; ok {
			return sc, nil
		}
	}
	if sc, ok := c.entries["default"]; ok {
		return sc, nil
	}
	if strings.TrimSpace(zip) == "" {
		return nil, eris.New("standards: empty zip")
	}
	return nil, nil
}
