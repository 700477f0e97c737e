package persona

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed samples.json
var samplesJSON []byte

var samples = mustLoadSamples(samplesJSON)

func mustLoadSamples(data []byte) map[string]Persona {
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		panic(fmt.Sprintf("persona: decode built-in samples: %v", err))
	}
	out := make(map[string]Persona, len(raw))
	for id, m := range raw {
		out[id] = Normalize(m)
	}
	return out
}

// SampleIDs lists the built-in sample identifiers in sorted order.
func SampleIDs() []string {
	ids := make([]string, 0, len(samples))
	for id := range samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sample returns a deep copy of the built-in persona id.
func Sample(id string) (Persona, error) {
	p, ok := samples[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownSample, id)
	}
	return p.Clone(), nil
}
