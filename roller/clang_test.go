package roller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwebmedia/rolldeps/roller"
)

func clangScript(revision string) string {
	return "#!/usr/bin/env python\n# Update script.\n\nCLANG_REVISION = '" + revision + "'\nCLANG_SUB_REVISION = 1\n"
}

func TestClangRevision(t *testing.T) {
	t.Parallel()

	t.Run("should extract the pinned revision", func(t *testing.T) {
		t.Parallel()

		// when
		revision, err := roller.ClangRevision(clangScript("310694"))

		// then
		require.NoError(t, err)
		assert.Equal(t, "310694", revision)
	})

	t.Run("should fail when no revision line is present", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := roller.ClangRevision("#!/usr/bin/env python\nprint('nothing here')\n")

		// then
		assert.Error(t, err)
	})

	t.Run("should not match an indented or suffixed line", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := roller.ClangRevision("  CLANG_REVISION = '123'\nCLANG_REVISION = '123'  # pinned\n")

		// then
		assert.Error(t, err)
	})
}

func TestChangedClang(t *testing.T) {
	t.Parallel()

	t.Run("should report a change between two scripts", func(t *testing.T) {
		t.Parallel()

		// when
		change, err := roller.ChangedClang(clangScript("100"), clangScript("110"))

		// then
		require.NoError(t, err)
		assert.True(t, change.Changed())
		assert.Equal(t, "100", change.CurrentRevision)
		assert.Equal(t, "110", change.NewRevision)
	})

	t.Run("should report no change for identical pins", func(t *testing.T) {
		t.Parallel()

		// when
		change, err := roller.ChangedClang(clangScript("100"), clangScript("100"))

		// then
		require.NoError(t, err)
		assert.False(t, change.Changed())
	})

	t.Run("should say which script was unreadable", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := roller.ChangedClang("no pin here", clangScript("100"))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "local update script")
	})
}
