package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Question is one entry in the bank. The bank is ordered and immutable for
// the lifetime of the process.
type Question struct {
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	Correct string   `json:"correct" yaml:"correct"`
}

// QuestionView is the client-facing shape of a question. The correct answer
// never leaves the server before evaluation.
type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices,omitempty"`
}

func (q Question) view() QuestionView {
	return QuestionView{
		Prompt:  q.Prompt,
		Choices: q.Choices,
	}
}

// loadQuestions reads the bank from a JSON or YAML file. Any failure here is
// fatal at startup; there is no runtime recovery from a bad bank.
func loadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question bank: %w", err)
	}

	var bank []Question

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &bank)
	default:
		err = json.Unmarshal(data, &bank)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing question bank %s: %w", path, err)
	}

	if len(bank) == 0 {
		return nil, fmt.Errorf("question bank %s contains no questions", path)
	}

	for i, q := range bank {
		if q.Prompt == "" {
			return nil, fmt.Errorf("question %d has no prompt", i+1)
		}
		if q.Correct == "" {
			return nil, fmt.Errorf("question %d (%q) has no correct answer", i+1, q.Prompt)
		}
	}

	return bank, nil
}
