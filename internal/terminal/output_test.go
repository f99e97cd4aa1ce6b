package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    int    `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteStructured(t *testing.T) {
	v := []sample{{ID: 1, Title: "First"}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteStructured(&buf, FormatJSON, v))
		assert.Equal(t, "[\n  {\n    \"id\": 1,\n    \"title\": \"First\"\n  }\n]\n", buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteStructured(&buf, FormatYAML, v))
		assert.Equal(t, "- id: 1\n  title: First\n", buf.String())
	})

	t.Run("table is not structured", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, WriteStructured(&buf, FormatTable, v))
		assert.False(t, FormatTable.IsStructured())
		assert.True(t, FormatYAML.IsStructured())
	})
}
