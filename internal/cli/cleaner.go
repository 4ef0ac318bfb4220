package cli

import (
	"github.com/toyz/apimod/internal/generator"
	"github.com/toyz/apimod/internal/templates"
	"github.com/toyz/apimod/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	processor *utils.FileProcessor
}

// NewCleaner creates a new cleaner
func NewCleaner(processor *utils.FileProcessor) *Cleaner {
	return &Cleaner{processor: processor}
}

// CleanGeneratedFiles removes every apimod_gen.go below the patterns that
// carries the generated-code header and returns the removed paths
func (c *Cleaner) CleanGeneratedFiles(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	targets, err := utils.ParsePatterns(patterns)
	if err != nil {
		return nil, err
	}
	return c.processor.RemoveGeneratedFiles(targets, generator.GeneratedFileName, []byte(templates.GeneratedHeader))
}
