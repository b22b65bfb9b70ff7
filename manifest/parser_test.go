package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwebmedia/rolldeps/domain"
	"github.com/openwebmedia/rolldeps/manifest"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("should parse vars, deps and deps_os", func(t *testing.T) {
		t.Parallel()

		// given
		src := `
# Dependency manifest.
vars = {
  'chromium_git': 'https://chromium.googlesource.com',
  'chromium_revision': 'aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa',
}

deps = {
  'src/build':
    Var('chromium_git') + '/chromium/src/build' + '@' + 'bbbb',
  'src/third_party/gtest': {
    'url': Var('chromium_git') + '/external/gtest',
    'revision': 'cccc',
  },
}

deps_os = {
  'win': {
    'src/third_party/winsdk': Var('chromium_git') + '/winsdk@dddd',
  },
}
`

		// when
		m, err := manifest.Parse(src)

		// then
		require.NoError(t, err)
		assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", m.Vars["chromium_revision"])
		require.Len(t, m.Deps, 2)
		assert.True(t, m.Deps["src/build"].IsBare)
		assert.Equal(t, "https://chromium.googlesource.com/chromium/src/build@bbbb", m.Deps["src/build"].Bare)
		assert.Equal(t, "https://chromium.googlesource.com/external/gtest",
			m.Deps["src/third_party/gtest"].Fields["url"])
		require.Contains(t, m.DepsOS, "win")
		assert.Equal(t, "https://chromium.googlesource.com/winsdk@dddd",
			m.DepsOS["win"]["src/third_party/winsdk"].Bare)
	})

	t.Run("should keep CIPD entries structurally uninterpreted", func(t *testing.T) {
		t.Parallel()

		// given
		src := `
deps = {
  'src/third_party/ffmpeg': {
    'dep_type': 'cipd',
    'packages': [
      {
        'package': 'chromium/third_party/ffmpeg',
        'version': 'version:2@1.0',
      },
    ],
  },
}
`

		// when
		m, err := manifest.Parse(src)

		// then
		require.NoError(t, err)
		entry := m.Deps["src/third_party/ffmpeg"]
		assert.False(t, entry.IsBare)
		assert.Equal(t, "cipd", entry.Fields["dep_type"])
		packages, ok := entry.Fields["packages"].([]any)
		require.True(t, ok)
		require.Len(t, packages, 1)
	})

	t.Run("should ignore unknown top-level assignments", func(t *testing.T) {
		t.Parallel()

		// given
		src := `
use_relative_paths = False
recursion = 1
targets = ['all', 'default']
vars = {'rev': 'abc'}
deps = {'src/dep': 'https://example.org/dep@' + Var('rev')}
`

		// when
		m, err := manifest.Parse(src)

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://example.org/dep@abc", m.Deps["src/dep"].Bare)
	})

	t.Run("should resolve variables only after they are defined", func(t *testing.T) {
		t.Parallel()

		// given
		src := `
deps = {'src/dep': Var('rev')}
vars = {'rev': 'abc'}
`

		// when
		_, err := manifest.Parse(src)

		// then
		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Error(), "undefined variable")
	})

	t.Run("should fail on an unterminated string", func(t *testing.T) {
		t.Parallel()

		// given
		src := "deps = {'src/dep': 'https://example.org\n}"

		// when
		_, err := manifest.Parse(src)

		// then
		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("should fail when deps is not a dict", func(t *testing.T) {
		t.Parallel()

		// given
		src := `deps = ['src/dep']`

		// when
		_, err := manifest.Parse(src)

		// then
		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Error(), "deps must be a dict")
	})

	t.Run("should fail on a deps entry that is neither string nor dict", func(t *testing.T) {
		t.Parallel()

		// given
		src := `deps = {'src/dep': 42}`

		// when
		_, err := manifest.Parse(src)

		// then
		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("should report the line of a syntax error", func(t *testing.T) {
		t.Parallel()

		// given
		src := "vars = {\n  'rev' 'abc',\n}"

		// when
		_, err := manifest.Parse(src)

		// then
		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 2, parseErr.Line)
	})

	t.Run("should handle escapes and both quote styles", func(t *testing.T) {
		t.Parallel()

		// given
		src := `vars = {"quoted": 'it\'s', 'other': "tab\there"}
deps = {}
`

		// when
		m, err := manifest.Parse(src)

		// then
		require.NoError(t, err)
		assert.Equal(t, "it's", m.Vars["quoted"])
		assert.Equal(t, "tab\there", m.Vars["other"])
	})
}
