package orchestrator

// #region imports
import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/configs"
)

// #endregion

// #region template-types

// EventTemplate is one entry of an event template set.
type EventTemplate struct {
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description"`
	SuggestedActions []string `yaml:"suggested_actions"`
	EmotionalContext []string `yaml:"emotional_context"`
}

// ConflictTemplate is one entry of a conflict template set.
type ConflictTemplate struct {
	Title               string   `yaml:"title"`
	Description         string   `yaml:"description"`
	Emotions            []string `yaml:"emotions"`
	ValueContradictions []string `yaml:"value_contradictions"`
}

// Library holds the static event and conflict template tables.
// Event sets are keyed by name (e.g. "quest_suggestion"); conflict sets by
// "internal", "interpersonal" and "external".
type Library struct {
	GenericLocations []string                      `yaml:"generic_locations"`
	Events           map[string][]EventTemplate    `yaml:"events"`
	Conflicts        map[string][]ConflictTemplate `yaml:"conflicts"`
}

const (
	fallbackEventSet = "quest_suggestion"

	conflictSetInternal      = "internal"
	conflictSetInterpersonal = "interpersonal"
	conflictSetExternal      = "external"
)

// #endregion

// #region load

// ParseLibrary decodes a YAML template library.
func ParseLibrary(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse template library: %w", err)
	}
	if len(lib.Events[fallbackEventSet]) == 0 {
		return nil, fmt.Errorf("template library: %q set is required", fallbackEventSet)
	}
	if len(lib.GenericLocations) == 0 {
		return nil, fmt.Errorf("template library: generic_locations is empty")
	}
	return &lib, nil
}

// LoadLibrary reads a template library from disk.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template library %s: %w", path, err)
	}
	return ParseLibrary(data)
}

// DefaultLibrary returns the embedded template library.
func DefaultLibrary() *Library {
	lib, err := ParseLibrary(configs.Templates)
	if err != nil {
		panic(err)
	}
	return lib
}

// #endregion

// #region lookup

// eventSet returns the template set for a candidate category, falling back
// to the quest suggestion set.
func (l *Library) eventSet(cat Category) []EventTemplate {
	if set := l.Events[string(cat)+"_suggestion"]; len(set) > 0 {
		return set
	}
	return l.Events[fallbackEventSet]
}

// #endregion

// #region fill

// fill substitutes {key} placeholders. Unknown placeholders are left as is.
func fill(pattern string, values map[string]string) string {
	if !strings.Contains(pattern, "{") {
		return pattern
	}
	pairs := make([]string, 0, len(values)*2)
	for _, k := range sortedKeys(values) {
		pairs = append(pairs, "{"+k+"}", values[k])
	}
	return strings.NewReplacer(pairs...).Replace(pattern)
}

// #endregion
