package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain object",
			input: `{"title":"Go"}`,
			want:  `{"title":"Go"}`,
		},
		{
			name:  "surrounded by prose",
			input: "Here is your outline:\n{\"title\":\"Go\",\"modules\":[]}\nLet me know!",
			want:  `{"title":"Go","modules":[]}`,
		},
		{
			name:  "markdown fence",
			input: "```json\n{\"a\":{\"b\":1}}\n```",
			want:  `{"a":{"b":1}}`,
		},
		{
			name:  "braces inside strings",
			input: `note: {"text":"use } and { freely","n":"\"}"} trailing`,
			want:  `{"text":"use } and { freely","n":"\"}"}`,
		},
		{
			name:  "stray brace before object",
			input: `a { b {"ok":true}`,
			want:  `{"ok":true}`,
		},
		{
			name:    "no object",
			input:   "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "unterminated",
			input:   `{"title": "Go"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoJSONObject)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
			assert.True(t, json.Valid(got))
		})
	}
}
