package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

const validScenario = `
version: v1
name: "Support bot smoke test"
description: "Checks the greeting and hours answers"
chatbot_id: "bot-1"
cases:
  - id: greeting
    message: "Hi"
  - id: hours
    message: "What are your hours?"
    expect_contains: "9 AM to 5 PM"
`

func TestParseYAML_Valid(t *testing.T) {
	sc, err := ParseYAML([]byte(validScenario))
	require.NoError(t, err)

	assert.NotEmpty(t, sc.ID)
	assert.Equal(t, "Support bot smoke test", sc.Name)
	assert.Equal(t, "bot-1", sc.ChatbotID)
	assert.Equal(t, scenario.StatusDraft, sc.Status)

	require.Len(t, sc.TestCases, 2)
	assert.Equal(t, "greeting", sc.TestCases[0].ID)
	assert.Equal(t, "Hi", sc.TestCases[0].InputMessage)
	assert.Empty(t, sc.TestCases[0].ExpectedResponseHint)
	assert.Equal(t, scenario.CasePending, sc.TestCases[0].Status)

	assert.Equal(t, "hours", sc.TestCases[1].ID)
	assert.Equal(t, "9 AM to 5 PM", sc.TestCases[1].ExpectedResponseHint)
}

func TestParseYAML_GeneratesMissingCaseIDs(t *testing.T) {
	sc, err := ParseYAML([]byte(`
version: v1
name: "No ids"
chatbot_id: "bot-1"
cases:
  - message: "Hi"
  - message: "Bye"
`))
	require.NoError(t, err)
	assert.NotEmpty(t, sc.TestCases[0].ID)
	assert.NotEmpty(t, sc.TestCases[1].ID)
	assert.NotEqual(t, sc.TestCases[0].ID, sc.TestCases[1].ID)
}

func TestParseYAML_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "not yaml",
			yaml:    "::::",
			wantErr: "failed to unmarshal YAML",
		},
		{
			name:    "unsupported version",
			yaml:    "version: v2\nname: x\nchatbot_id: b\ncases:\n  - message: hi\n",
			wantErr: "unsupported version",
		},
		{
			name:    "missing name",
			yaml:    "version: v1\nchatbot_id: b\ncases:\n  - message: hi\n",
			wantErr: "name is required",
		},
		{
			name:    "missing chatbot id",
			yaml:    "version: v1\nname: x\ncases:\n  - message: hi\n",
			wantErr: "chatbot_id is required",
		},
		{
			name:    "no cases",
			yaml:    "version: v1\nname: x\nchatbot_id: b\n",
			wantErr: "no cases defined",
		},
		{
			name:    "case without message",
			yaml:    "version: v1\nname: x\nchatbot_id: b\ncases:\n  - id: c1\n",
			wantErr: "a message is required",
		},
		{
			name:    "duplicate case ids",
			yaml:    "version: v1\nname: x\nchatbot_id: b\ncases:\n  - id: c1\n    message: hi\n  - id: c1\n    message: bye\n",
			wantErr: "duplicate case id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateYAMLWithSchema(t *testing.T) {
	assert.NoError(t, ValidateYAMLWithSchema([]byte(validScenario)))

	err := ValidateYAMLWithSchema([]byte(`
version: v1
name: "Bad case"
chatbot_id: "bot-1"
cases:
  - expect_contains: "no message here"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestValidateYAMLWithSchema_RejectsBadVersion(t *testing.T) {
	err := ValidateYAMLWithSchema([]byte(`
version: v9
name: "x"
chatbot_id: "bot-1"
cases:
  - message: hi
`))
	require.Error(t, err)
}
