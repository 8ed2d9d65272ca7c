// Package catalog holds the embedded example-trial documents. The catalog is
// both the fallback data source for the results view and the driver for the
// simulated pipeline when no job service is reachable.
package catalog

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/trialbench/trialbench/internal/models"
)

//go:embed examples/*.yaml
var exampleFS embed.FS

// Example is one catalog entry: a completed trial with its generated code,
// protocol, result data, and the keywords used to match it to a question.
type Example struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	EntityID    string   `yaml:"entity_id"`
	RecordCount int      `yaml:"record_count"`

	CausalQuestion string `yaml:"causal_question"`
	DesignSpec     string `yaml:"design_spec"`
	Code           string `yaml:"code"`

	Images []string       `yaml:"images"`
	Data   map[string]any `yaml:"data"`
}

// Summary is the typed view of an example's data block.
type Summary struct {
	TrialName      string  `mapstructure:"trial_name"`
	PrimaryOutcome string  `mapstructure:"primary_outcome"`
	HazardRatio    float64 `mapstructure:"hazard_ratio"`
	CILower        float64 `mapstructure:"ci_lower"`
	CIUpper        float64 `mapstructure:"ci_upper"`
	PValue         float64 `mapstructure:"p_value"`
	SampleSize     int     `mapstructure:"sample_size"`
}

// Catalog is an immutable, ordered collection of examples.
type Catalog struct {
	examples []*Example
	byID     map[string]*Example
}

// Load parses and validates every embedded example document. Documents are
// ordered by filename, which fixes the Match tie-break and fallback order.
func Load() (*Catalog, error) {
	entries, err := exampleFS.ReadDir("examples")
	if err != nil {
		return nil, fmt.Errorf("reading embedded examples: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	c := &Catalog{byID: make(map[string]*Example)}
	for _, name := range names {
		data, err := exampleFS.ReadFile("examples/" + name)
		if err != nil {
			return nil, fmt.Errorf("reading example %s: %w", name, err)
		}

		if errs := validateExampleBytes(data); len(errs) > 0 {
			return nil, fmt.Errorf("example %s failed schema validation: %s", name, strings.Join(errs, "; "))
		}

		var ex Example
		if err := yaml.Unmarshal(data, &ex); err != nil {
			return nil, fmt.Errorf("parsing example %s: %w", name, err)
		}
		if _, dup := c.byID[ex.ID]; dup {
			return nil, fmt.Errorf("duplicate example id %q in %s", ex.ID, name)
		}

		c.examples = append(c.examples, &ex)
		c.byID[ex.ID] = &ex
	}

	if len(c.examples) == 0 {
		return nil, fmt.Errorf("no example documents embedded")
	}
	return c, nil
}

// List returns the examples in catalog order.
func (c *Catalog) List() []*Example {
	out := make([]*Example, len(c.examples))
	copy(out, c.examples)
	return out
}

// Get returns the example with the given id, or nil.
func (c *Catalog) Get(id string) *Example {
	return c.byID[id]
}

// Match selects the example best matching a free-text question using
// case-insensitive keyword hits. The highest hit count wins; ties break by
// catalog order; zero hits fall back to the first entry.
func (c *Catalog) Match(question string) *Example {
	q := strings.ToLower(question)

	best := c.examples[0]
	bestHits := 0
	for _, ex := range c.examples {
		hits := 0
		for _, kw := range ex.Keywords {
			if strings.Contains(q, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = ex, hits
		}
	}
	return best
}

// Artifact converts the example's generated outputs into the artifact shape
// the workflow hands to the presentation layer.
func (e *Example) Artifact() models.Artifact {
	return models.Artifact{
		RunID:             e.ID,
		TrialName:         e.Name,
		CausalQuestion:    e.CausalQuestion,
		DesignSpec:        e.DesignSpec,
		Code:              e.Code,
		ValidatorFeedback: e.Description,
	}
}

// ResultsPayload converts the example's data block into a results payload.
func (e *Example) ResultsPayload() models.ResultsPayload {
	return models.ResultsPayload{
		Source:    models.SourceExample,
		ExampleID: e.ID,
		TrialName: e.Name,
		Data:      e.Data,
		Images:    e.Images,
	}
}

// Summary decodes the example's loosely-typed data block into a Summary.
func (e *Example) Summary() (Summary, error) {
	var s Summary
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Summary{}, err
	}
	if err := dec.Decode(e.Data); err != nil {
		return Summary{}, fmt.Errorf("decoding data block for %s: %w", e.ID, err)
	}
	return s, nil
}
