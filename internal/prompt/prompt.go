// Package prompt loads the question texts used for seeded and chained daily
// questions.
package prompt

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Set is the on-disk prompt file format.
type Set struct {
	Questions []string `yaml:"questions"`
}

// Parse decodes a YAML prompt set, dropping blank entries.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}

	questions := set.Questions[:0]
	for _, q := range set.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("prompt set has no questions")
	}
	set.Questions = questions
	return &set, nil
}

// Default returns the built-in prompt set.
func Default() *Set {
	set, err := Parse(defaultPrompts)
	if err != nil {
		panic(err)
	}
	return set
}

// Load reads a prompt set from path, or returns the built-in set when path is empty.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	return Parse(data)
}

// Picker chooses questions from a set uniformly at random.
type Picker struct {
	mu        sync.Mutex
	rng       *rand.Rand
	questions []string
}

// NewPicker returns a picker over set. A nil rng uses a randomly seeded source.
func NewPicker(set *Set, rng *rand.Rand) *Picker {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Picker{rng: rng, questions: set.Questions}
}

func (p *Picker) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.questions[p.rng.IntN(len(p.questions))]
}
