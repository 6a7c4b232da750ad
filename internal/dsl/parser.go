// Package dsl parses chatcheck scenario files.
package dsl

import (
	"fmt"

	"github.com/google/uuid"
	yaml "gopkg.in/yaml.v3"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

// ScenarioFile is the YAML shape of a local scenario definition.
type ScenarioFile struct {
	Version     string     `json:"version" yaml:"version"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	ChatbotID   string     `json:"chatbot_id" yaml:"chatbot_id"`
	Cases       []CaseSpec `json:"cases" yaml:"cases"`
}

// CaseSpec is one test case definition.
type CaseSpec struct {
	ID             string `json:"id,omitempty" yaml:"id,omitempty"`
	Message        string `json:"message" yaml:"message"`
	ExpectContains string `json:"expect_contains,omitempty" yaml:"expect_contains,omitempty"`
}

// ParseYAML parses a scenario file into a draft scenario ready to run.
// Cases without an explicit id get a generated one; explicit ids must be
// unique within the file.
func ParseYAML(payload []byte) (*scenario.Scenario, error) {
	var file ScenarioFile
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if file.Version != "v1" {
		return nil, fmt.Errorf("unsupported version: %q", file.Version)
	}
	if file.Name == "" {
		return nil, fmt.Errorf("a scenario name is required")
	}
	if file.ChatbotID == "" {
		return nil, fmt.Errorf("scenario %q: chatbot_id is required", file.Name)
	}
	if len(file.Cases) == 0 {
		return nil, fmt.Errorf("scenario %q: no cases defined", file.Name)
	}

	seen := make(map[string]struct{}, len(file.Cases))
	cases := make([]scenario.TestCase, len(file.Cases))
	for i, spec := range file.Cases {
		if spec.Message == "" {
			return nil, fmt.Errorf("scenario %q: case %d: a message is required", file.Name, i)
		}
		id := spec.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("scenario %q: duplicate case id %q", file.Name, id)
		}
		seen[id] = struct{}{}
		cases[i] = scenario.TestCase{
			ID:                   id,
			InputMessage:         spec.Message,
			ExpectedResponseHint: spec.ExpectContains,
			Status:               scenario.CasePending,
		}
	}

	return &scenario.Scenario{
		ID:          uuid.NewString(),
		ChatbotID:   file.ChatbotID,
		Name:        file.Name,
		Description: file.Description,
		TestCases:   cases,
		Status:      scenario.StatusDraft,
	}, nil
}
