package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchSpace_Acquire(t *testing.T) {
	t.Run("creates a directory under the root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "scratch")
		space := NewScratchSpace(root)

		scratch, err := space.Acquire(context.Background(), "deckgen-")
		require.NoError(t, err)
		defer scratch.Close()

		dir := scratch.(*Scratch).Dir()
		assert.True(t, strings.HasPrefix(filepath.Base(dir), "deckgen-"))
		assert.Equal(t, root, filepath.Dir(dir))
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("each acquisition is distinct", func(t *testing.T) {
		space := NewScratchSpace(t.TempDir())

		a, err := space.Acquire(context.Background(), "x-")
		require.NoError(t, err)
		defer a.Close()
		b, err := space.Acquire(context.Background(), "x-")
		require.NoError(t, err)
		defer b.Close()

		assert.NotEqual(t, a.Path("f"), b.Path("f"))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewScratchSpace(t.TempDir()).Acquire(ctx, "x-")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestScratch_WriteFromAndClose(t *testing.T) {
	space := NewScratchSpace(t.TempDir())
	scratch, err := space.Acquire(context.Background(), "deckgen-")
	require.NoError(t, err)
	dir := scratch.(*Scratch).Dir()

	path, err := scratch.WriteFrom("template.pptx", strings.NewReader("PK"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "template.pptx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data))

	t.Run("names cannot escape the directory", func(t *testing.T) {
		assert.Equal(t, filepath.Join(dir, "passwd"), scratch.Path("../../etc/passwd"))
	})

	t.Run("nil reader", func(t *testing.T) {
		_, err := scratch.WriteFrom("x", nil)
		assert.Error(t, err)
	})

	require.NoError(t, scratch.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, scratch.Close())
	_, err = scratch.WriteFrom("late.pptx", strings.NewReader("x"))
	assert.Error(t, err)
}
