package builders

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutlineBuilder(t *testing.T) {
	t.Run("builds descriptors in order", func(t *testing.T) {
		outline := NewOutlineBuilder().
			WithSlide("One", "a", "b").
			WithNotes("say hello").
			WithSlide("Two").
			Build()

		require.Len(t, outline.Slides, 2)
		assert.Equal(t, "One", outline.Slides[0].Title)
		assert.Equal(t, []string{"a", "b"}, outline.Slides[0].Content)
		assert.Equal(t, "say hello", outline.Slides[0].Notes)
		assert.NotNil(t, outline.Slides[1].Content)
		assert.Empty(t, outline.Slides[1].Content)
	})

	t.Run("build returns independent copies", func(t *testing.T) {
		b := NewOutlineBuilder().WithSlide("One", "a")
		first := b.Build()
		first.Slides[0].Content[0] = "changed"

		assert.Equal(t, "a", b.Build().Slides[0].Content[0])
	})

	t.Run("slide count helper", func(t *testing.T) {
		outline := NewOutlineBuilder().WithSlideCount(3).Build()
		assert.Equal(t, []string{"Slide 1", "Slide 2", "Slide 3"}, outline.Titles())
	})

	t.Run("intro outline", func(t *testing.T) {
		assert.Equal(t, []string{"Intro"}, IntroOutline().Titles())
	})
}

func TestTemplateBuilder(t *testing.T) {
	readParts := func(t *testing.T, data []byte) map[string]string {
		t.Helper()
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		parts := make(map[string]string)
		for _, f := range r.File {
			rc, err := f.Open()
			require.NoError(t, err)
			body, err := io.ReadAll(rc)
			require.NoError(t, err)
			_ = rc.Close()
			parts[f.Name] = string(body)
		}
		return parts
	}

	t.Run("default template", func(t *testing.T) {
		data, err := NewTemplateBuilder().Build()
		require.NoError(t, err)

		parts := readParts(t, data)
		assert.Contains(t, parts, "[Content_Types].xml")
		assert.Contains(t, parts, "ppt/presentation.xml")
		assert.Contains(t, parts, "ppt/slideLayouts/slideLayout1.xml")
		assert.Contains(t, parts, "ppt/slideLayouts/slideLayout2.xml")
		assert.Contains(t, parts, "ppt/notesMasters/notesMaster1.xml")
		assert.Contains(t, parts, "ppt/slides/slide1.xml")
		assert.Contains(t, parts["ppt/presentation.xml"], `<p:sldId id="256" r:id="rId4"/>`)
	})

	t.Run("options", func(t *testing.T) {
		data, err := NewTemplateBuilder().
			WithOriginalSlides(3).
			WithoutNotesMaster().
			AsTemplate().
			Build()
		require.NoError(t, err)

		parts := readParts(t, data)
		assert.Contains(t, parts, "ppt/slides/slide3.xml")
		assert.NotContains(t, parts, "ppt/notesMasters/notesMaster1.xml")
		assert.True(t, strings.Contains(parts["[Content_Types].xml"], "template.main+xml"))
	})

	t.Run("without slide list", func(t *testing.T) {
		data, err := NewTemplateBuilder().WithoutSlideList().Build()
		require.NoError(t, err)

		parts := readParts(t, data)
		assert.NotContains(t, parts["ppt/presentation.xml"], "sldIdLst")
		assert.NotContains(t, parts, "ppt/slides/slide1.xml")
	})
}
