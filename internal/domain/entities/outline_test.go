package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlideDescriptor_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected SlideDescriptor
	}{
		{
			name:     "all fields",
			input:    `{"title":"Intro","content":["a","b"],"notes":"say hi"}`,
			expected: SlideDescriptor{Title: "Intro", Content: []string{"a", "b"}, Notes: "say hi"},
		},
		{
			name:     "missing fields default to zero values",
			input:    `{}`,
			expected: SlideDescriptor{Content: []string{}},
		},
		{
			name:     "null fields",
			input:    `{"title":null,"content":null,"notes":null}`,
			expected: SlideDescriptor{Content: []string{}},
		},
		{
			name:     "string content becomes one line",
			input:    `{"title":"T","content":"only line"}`,
			expected: SlideDescriptor{Title: "T", Content: []string{"only line"}},
		},
		{
			name:     "non-string items keep their JSON text",
			input:    `{"title":42,"content":[1, true, {"k": "v"}]}`,
			expected: SlideDescriptor{Title: "42", Content: []string{"1", "true", `{"k":"v"}`}},
		},
		{
			name:     "list notes are joined",
			input:    `{"title":"T","notes":["first","second"]}`,
			expected: SlideDescriptor{Title: "T", Content: []string{}, Notes: "first\nsecond"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d SlideDescriptor
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.expected, d)
		})
	}

	t.Run("not an object", func(t *testing.T) {
		var d SlideDescriptor
		assert.Error(t, json.Unmarshal([]byte(`["x"]`), &d))
	})
}

func TestSlideDescriptor_HasNotes(t *testing.T) {
	assert.False(t, SlideDescriptor{}.HasNotes())
	assert.False(t, SlideDescriptor{Notes: "  \n"}.HasNotes())
	assert.True(t, SlideDescriptor{Notes: "talk"}.HasNotes())
}

func TestOutline(t *testing.T) {
	var nilOutline *Outline
	assert.Equal(t, 0, nilOutline.SlideCount())
	assert.Nil(t, nilOutline.Titles())

	outline := &Outline{Slides: []SlideDescriptor{{Title: "A"}, {Title: "B"}}}
	assert.Equal(t, 2, outline.SlideCount())
	assert.Equal(t, []string{"A", "B"}, outline.Titles())
}
