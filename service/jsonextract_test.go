package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "plain object",
			input: `{"lastName":"כהן"}`,
			want:  `{"lastName":"כהן"}`,
			ok:    true,
		},
		{
			name:  "fenced json block",
			input: "```json\n{\"lastName\":\"כהן\"}\n```",
			want:  `{"lastName":"כהן"}`,
			ok:    true,
		},
		{
			name:  "chatter around the object",
			input: `Here is the extracted data: {"a":1} hope that helps`,
			want:  `{"a":1}`,
			ok:    true,
		},
		{
			name:  "nested objects",
			input: `{"dateOfBirth":{"day":"15","month":"6","year":"1985"}}`,
			want:  `{"dateOfBirth":{"day":"15","month":"6","year":"1985"}}`,
			ok:    true,
		},
		{
			name:  "braces inside strings",
			input: `{"note":"value with } brace and { brace"}`,
			want:  `{"note":"value with } brace and { brace"}`,
			ok:    true,
		},
		{
			name:  "escaped quotes inside strings",
			input: `{"note":"he said \"hi\" {"} trailing`,
			want:  `{"note":"he said \"hi\" {"}`,
			ok:    true,
		},
		{
			name:  "first object wins",
			input: `{"a":1}{"b":2}`,
			want:  `{"a":1}`,
			ok:    true,
		},
		{
			name:  "no object",
			input: "I could not extract anything from this document.",
			ok:    false,
		},
		{
			name:  "unterminated object",
			input: `{"a": {"b": 1}`,
			ok:    false,
		},
		{
			name:  "empty input",
			input: "",
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.True(t, json.Valid([]byte(got)))
			}
		})
	}
}
