package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwebmedia/rolldeps/application"
	"github.com/openwebmedia/rolldeps/config"
	"github.com/openwebmedia/rolldeps/domain"
	"github.com/openwebmedia/rolldeps/roller"
	testdoubles "github.com/openwebmedia/rolldeps/test"
)

const localManifest = `
vars = {
  'chromium_revision': 'aaaa',
}

deps = {
  'src/foo': 'https://x/foo@1111',
}
`

const remoteManifest = `
vars = {
  'chromium_revision': 'bbbb',
}

deps = {
  'src/foo': 'https://x/foo@2222',
}
`

func rollConfig() *config.Config {
	return &config.Config{
		Source: config.SourceConfig{
			Name: "chromium_revision",
			URL:  "https://cr.example.org/src",
			Var:  "chromium_revision",
		},
		ManifestName:    "DEPS",
		ClangScriptPath: "tools/clang/scripts/update.py",
	}
}

func rollFetcher() *testdoubles.SpyFetcher {
	return &testdoubles.SpyFetcher{
		Files: map[string]string{
			"DEPS@aaaa": localManifest,
			"DEPS@bbbb": remoteManifest,
		},
		CommitMessages: map[string]string{
			"aaaa": "Old change\n\nCr-Commit-Position: refs/heads/master@{#100}",
			"bbbb": "New change\n\nCr-Commit-Position: refs/heads/master@{#200}",
		},
	}
}

func TestRollServiceRoll(t *testing.T) {
	t.Parallel()

	t.Run("should compute a full roll for an explicit revision", func(t *testing.T) {
		t.Parallel()

		// given
		service := application.NewRollService(rollConfig(), rollFetcher(), &testdoubles.SpyResolver{}, &testdoubles.StubIdentity{Email: "roller@example.org"})

		// when
		result, err := service.Roll(context.Background(), localManifest, application.RollOptions{Revision: "bbbb", CommitQueueOver: 1})

		// then
		require.NoError(t, err)
		assert.Equal(t, domain.RevisionUpdate{CurrentRevision: "aaaa", NewRevision: "bbbb"}, result.Update)
		assert.Equal(t, roller.CommitPositions{Current: 100, New: 200}, result.Positions)
		require.Len(t, result.Changes, 1)
		assert.Equal(t, domain.ChangedGitDep{
			Path:            "src/foo",
			URL:             "https://x/foo",
			CurrentRevision: "1111",
			NewRevision:     "2222",
		}, result.Changes[0])
		assert.Contains(t, result.CommitMessage, "Roll chromium_revision aaaa..bbbb (100:200)")
		assert.Contains(t, result.CommitMessage, "* src/foo: https://x/foo/+log/1111..2222")
		assert.Contains(t, result.CommitMessage, "TBR=roller@example.org")
		assert.Contains(t, result.UpdatedManifest, "'chromium_revision': 'bbbb'")
		assert.Contains(t, result.UpdatedManifest, "'https://x/foo@2222'")
		assert.Equal(t, application.CommitQueueSubmit, result.CommitQueue)
	})

	t.Run("should default the target revision to the reference HEAD", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := &testdoubles.SpyResolver{Heads: map[string]string{"https://cr.example.org/src": "bbbb"}}
		service := application.NewRollService(rollConfig(), rollFetcher(), resolver, &testdoubles.StubIdentity{Email: "roller@example.org"})

		// when
		result, err := service.Roll(context.Background(), localManifest, application.RollOptions{CommitQueueOver: 1})

		// then
		require.NoError(t, err)
		assert.Equal(t, "bbbb", result.Update.NewRevision)
		assert.Equal(t, 1, resolver.CallCount("https://cr.example.org/src"))
	})

	t.Run("should roll the third-party range when configured", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := rollConfig()
		cfg.ThirdParty = config.SourceConfig{
			Name: "chromium third_party",
			URL:  "https://cr.example.org/src/third_party",
			Var:  "third_party_revision",
		}
		manifestWithThirdParty := `
vars = {
  'chromium_revision': 'aaaa',
  'third_party_revision': 'cccc',
}
deps = {}
`
		resolver := &testdoubles.SpyResolver{Heads: map[string]string{
			"https://cr.example.org/src/third_party": "dddd",
		}}
		fetcher := rollFetcher()
		fetcher.Files["DEPS@bbbb"] = "vars = {'chromium_revision': 'bbbb'}\ndeps = {}\n"
		service := application.NewRollService(cfg, fetcher, resolver, &testdoubles.StubIdentity{Email: "roller@example.org"})

		// when
		result, err := service.Roll(context.Background(), manifestWithThirdParty, application.RollOptions{Revision: "bbbb", CommitQueueOver: 1})

		// then
		require.NoError(t, err)
		assert.Equal(t, "cccc", result.Update.CurrentThirdPartyRevision)
		assert.Equal(t, "dddd", result.Update.NewThirdPartyRevision)
		assert.Contains(t, result.CommitMessage, "Roll chromium third_party cccc..dddd")
		assert.Contains(t, result.UpdatedManifest, "'third_party_revision': 'dddd'")
	})

	t.Run("should fail when the manifest lacks the range variable", func(t *testing.T) {
		t.Parallel()

		// given
		service := application.NewRollService(rollConfig(), rollFetcher(), &testdoubles.SpyResolver{}, &testdoubles.StubIdentity{Email: "roller@example.org"})

		// when
		_, err := service.Roll(context.Background(), "vars = {}\ndeps = {}\n", application.RollOptions{Revision: "bbbb"})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chromium_revision")
	})

	t.Run("should track the Clang pin when a local script is given", func(t *testing.T) {
		t.Parallel()

		// given
		fetcher := rollFetcher()
		fetcher.Files["tools/clang/scripts/update.py@bbbb"] = "CLANG_REVISION = '110'\n"
		service := application.NewRollService(rollConfig(), fetcher, &testdoubles.SpyResolver{}, &testdoubles.StubIdentity{Email: "roller@example.org"})

		// when
		result, err := service.Roll(context.Background(), localManifest, application.RollOptions{
			Revision:         "bbbb",
			LocalClangScript: "CLANG_REVISION = '100'\n",
			CommitQueueOver:  1,
		})

		// then
		require.NoError(t, err)
		assert.True(t, result.Clang.Changed())
		assert.Contains(t, result.CommitMessage, "Clang version changed 100:110")
	})

	t.Run("should skip Clang tracking without a local script", func(t *testing.T) {
		t.Parallel()

		// given
		fetcher := rollFetcher()
		service := application.NewRollService(rollConfig(), fetcher, &testdoubles.SpyResolver{}, &testdoubles.StubIdentity{Email: "roller@example.org"})

		// when
		result, err := service.Roll(context.Background(), localManifest, application.RollOptions{Revision: "bbbb", CommitQueueOver: 1})

		// then
		require.NoError(t, err)
		assert.False(t, result.Clang.Changed())
		assert.Contains(t, result.CommitMessage, "No update to Clang.")
		assert.NotContains(t, fetcher.FetchedFiles, "tools/clang/scripts/update.py@bbbb")
	})

	t.Run("should pick the commit-queue mode from the roll distance", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			opts application.RollOptions
			want application.CommitQueueMode
		}{
			{
				name: "should skip the queue when told to",
				opts: application.RollOptions{Revision: "bbbb", SkipCommitQueue: true},
				want: application.CommitQueueSkip,
			},
			{
				name: "should dry-run short rolls",
				opts: application.RollOptions{Revision: "bbbb", CommitQueueOver: 1000},
				want: application.CommitQueueDryRun,
			},
			{
				name: "should submit long rolls",
				opts: application.RollOptions{Revision: "bbbb", CommitQueueOver: 100},
				want: application.CommitQueueSubmit,
			},
			{
				name: "should dry-run a no-op roll when the threshold is unset",
				opts: application.RollOptions{Revision: "aaaa"},
				want: application.CommitQueueDryRun,
			},
			{
				name: "should submit a moving roll when the threshold is unset",
				opts: application.RollOptions{Revision: "bbbb"},
				want: application.CommitQueueSubmit,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				// given
				service := application.NewRollService(rollConfig(), rollFetcher(), &testdoubles.SpyResolver{}, &testdoubles.StubIdentity{Email: "roller@example.org"})

				// when
				result, err := service.Roll(context.Background(), localManifest, tt.opts)

				// then
				require.NoError(t, err)
				assert.Equal(t, tt.want, result.CommitQueue)
			})
		}
	})

	t.Run("should propagate fetch failures for the reference manifest", func(t *testing.T) {
		t.Parallel()

		// given
		fetcher := &testdoubles.SpyFetcher{}
		service := application.NewRollService(rollConfig(), fetcher, &testdoubles.SpyResolver{}, &testdoubles.StubIdentity{Email: "roller@example.org"})

		// when
		_, err := service.Roll(context.Background(), localManifest, application.RollOptions{Revision: "bbbb"})

		// then
		var fetchErr *domain.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "DEPS", fetchErr.Path)
	})

	t.Run("should surface an identity failure", func(t *testing.T) {
		t.Parallel()

		// given
		service := application.NewRollService(rollConfig(), rollFetcher(), &testdoubles.SpyResolver{}, &testdoubles.StubIdentity{Err: assert.AnError})

		// when
		_, err := service.Roll(context.Background(), localManifest, application.RollOptions{Revision: "bbbb"})

		// then
		assert.ErrorIs(t, err, assert.AnError)
	})
}
