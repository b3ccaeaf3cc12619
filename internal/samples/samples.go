// Package samples holds the quick-start questions offered to new users.
package samples

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var defaultQuestions = []string{
	"How many movies are available?",
	"Show me some comedy movies",
	"List the top 5 actors with most films",
	"Which customer has rented the most films?",
	"What are the most popular movie categories?",
	"Show me all movies released after 2005",
}

// Defaults returns a copy of the built-in questions.
func Defaults() []string {
	return append([]string(nil), defaultQuestions...)
}

type file struct {
	Questions []string `yaml:"questions"`
}

// Load returns the built-in questions when path is empty, otherwise the
// questions listed in the YAML file under "questions".
func Load(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sample questions: %w", err)
	}

	var parsed file
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse sample questions: %w", err)
	}
	questions := make([]string, 0, len(parsed.Questions))
	for _, q := range parsed.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, errors.New("sample questions file lists no questions")
	}
	return questions, nil
}
