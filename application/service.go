// Package application orchestrates a full dependency roll: parse the local
// manifest, settle the target revisions, fetch and diff the reference
// manifest, and render the commit message plus the updated manifest text.
package application

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/openwebmedia/rolldeps/config"
	"github.com/openwebmedia/rolldeps/domain"
	"github.com/openwebmedia/rolldeps/manifest"
	"github.com/openwebmedia/rolldeps/roller"
)

// CommitQueueMode decides what happens to the roll after upload.
type CommitQueueMode int

const (
	// CommitQueueSkip uploads only.
	CommitQueueSkip CommitQueueMode = iota
	// CommitQueueDryRun runs the trybots without submitting.
	CommitQueueDryRun
	// CommitQueueSubmit sends the roll to the commit queue.
	CommitQueueSubmit
)

// RollOptions holds the per-run knobs of a roll.
type RollOptions struct {
	// Revision is the reference revision to roll to; empty means the
	// reference HEAD.
	Revision string

	// ThirdPartyRevision is the third-party revision to roll to; empty
	// means that repository's HEAD.
	ThirdPartyRevision string

	// LocalClangScript is the content of the local Clang update script.
	// Clang tracking is skipped when empty.
	LocalClangScript string

	// SkipCommitQueue forces CommitQueueSkip regardless of distance.
	SkipCommitQueue bool

	// CommitQueueOver is the commit-position distance below which the
	// roll only dry-runs the commit queue. Zero or negative means the
	// default of 1: only a no-op roll dry-runs.
	CommitQueueOver int
}

// Result is everything a host needs to act on a computed roll. The service
// itself has no side effects: writing the manifest, committing, and
// uploading are the caller's business.
type Result struct {
	Update          domain.RevisionUpdate
	Positions       roller.CommitPositions
	Changes         []domain.Change
	Clang           domain.ClangChange
	CommitMessage   string
	UpdatedManifest string
	CommitQueue     CommitQueueMode
}

// RollService wires the parser, the diff engine, and the formatter to the
// injected collaborators.
type RollService struct {
	cfg      *config.Config
	fetcher  domain.FileFetcher
	resolver domain.RevisionResolver
	identity domain.IdentityProvider
}

// NewRollService creates a roll service.
func NewRollService(
	cfg *config.Config,
	fetcher domain.FileFetcher,
	resolver domain.RevisionResolver,
	identity domain.IdentityProvider,
) *RollService {
	return &RollService{cfg: cfg, fetcher: fetcher, resolver: resolver, identity: identity}
}

// Roll computes one dependency roll for the given local manifest text.
func (s *RollService) Roll(ctx context.Context, localManifest string, opts RollOptions) (*Result, error) {
	local, err := manifest.Parse(localManifest)
	if err != nil {
		return nil, err
	}

	// One memoized resolver per run, shared between the range defaults and
	// the diff pass.
	resolver := roller.NewCachingResolver(s.resolver)

	update, err := s.revisionUpdate(ctx, local, opts, resolver)
	if err != nil {
		return nil, err
	}
	logger.Infof("Rolling %s: %s -> %s", s.cfg.Source.Name, update.CurrentRevision, update.NewRevision)

	remoteText, err := s.fetcher.FetchFile(ctx, s.cfg.ManifestName, update.NewRevision)
	if err != nil {
		return nil, err
	}
	remote, err := manifest.Parse(string(remoteText))
	if err != nil {
		return nil, err
	}

	localIndex, err := manifest.BuildIndex(local.Deps, local.DepsOS, s.cfg.Platforms)
	if err != nil {
		return nil, err
	}
	remoteIndex, err := manifest.BuildIndex(remote.Deps, remote.DepsOS, s.cfg.Platforms)
	if err != nil {
		return nil, err
	}

	engine := roller.NewEngine(s.cfg.Options(), resolver)
	changes, err := engine.ChangedDeps(ctx, localIndex, remoteIndex)
	if err != nil {
		return nil, err
	}
	logger.Infof("Found %d changed dependencies", len(changes))

	positions, err := s.commitPositions(ctx, update)
	if err != nil {
		return nil, err
	}

	clang, err := s.clangChange(ctx, opts.LocalClangScript, update.NewRevision)
	if err != nil {
		return nil, err
	}

	userEmail, err := s.identity.CurrentUserEmail()
	if err != nil {
		return nil, err
	}

	message := roller.CommitMessage(s.cfg.Options(), update, positions, changes, clang, userEmail)
	return &Result{
		Update:          update,
		Positions:       positions,
		Changes:         changes,
		Clang:           clang,
		CommitMessage:   message,
		UpdatedManifest: roller.UpdateManifest(localManifest, update, changes),
		CommitQueue:     commitQueueMode(opts, positions),
	}, nil
}

// revisionUpdate derives the roll's revision ranges: the current revisions
// come from the manifest's range variables, the targets from the options
// or, when unset, from the reference repositories' HEADs.
func (s *RollService) revisionUpdate(
	ctx context.Context,
	local *manifest.Manifest,
	opts RollOptions,
	resolver domain.RevisionResolver,
) (domain.RevisionUpdate, error) {
	var update domain.RevisionUpdate

	current, present := local.Vars[s.cfg.Source.Var]
	if !present {
		return update, fmt.Errorf("manifest does not define the range variable %q", s.cfg.Source.Var)
	}
	update.CurrentRevision = current

	update.NewRevision = opts.Revision
	if update.NewRevision == "" {
		head, err := resolver.Head(ctx, s.cfg.Source.URL)
		if err != nil {
			return update, err
		}
		logger.Infof("No revision specified. Using HEAD: %s", head)
		update.NewRevision = head
	}

	if s.cfg.ThirdParty.Var == "" {
		return update, nil
	}
	currentThirdParty, present := local.Vars[s.cfg.ThirdParty.Var]
	if !present {
		return update, fmt.Errorf("manifest does not define the range variable %q", s.cfg.ThirdParty.Var)
	}
	update.CurrentThirdPartyRevision = currentThirdParty

	update.NewThirdPartyRevision = opts.ThirdPartyRevision
	if update.NewThirdPartyRevision == "" {
		head, err := resolver.Head(ctx, s.cfg.ThirdParty.URL)
		if err != nil {
			return update, err
		}
		logger.Infof("No third-party revision specified. Using HEAD: %s", head)
		update.NewThirdPartyRevision = head
	}

	return update, nil
}

func (s *RollService) commitPositions(ctx context.Context, update domain.RevisionUpdate) (roller.CommitPositions, error) {
	var positions roller.CommitPositions

	currentMessage, err := s.fetcher.FetchCommitMessage(ctx, update.CurrentRevision)
	if err != nil {
		return positions, err
	}
	positions.Current, err = roller.ParseCommitPosition(currentMessage)
	if err != nil {
		return positions, fmt.Errorf("revision %s: %w", update.CurrentRevision, err)
	}

	newMessage, err := s.fetcher.FetchCommitMessage(ctx, update.NewRevision)
	if err != nil {
		return positions, err
	}
	positions.New, err = roller.ParseCommitPosition(newMessage)
	if err != nil {
		return positions, fmt.Errorf("revision %s: %w", update.NewRevision, err)
	}

	return positions, nil
}

func (s *RollService) clangChange(ctx context.Context, localScript, newRevision string) (domain.ClangChange, error) {
	if localScript == "" || s.cfg.ClangScriptPath == "" {
		return domain.ClangChange{}, nil
	}
	remoteScript, err := s.fetcher.FetchFile(ctx, s.cfg.ClangScriptPath, newRevision)
	if err != nil {
		return domain.ClangChange{}, err
	}
	return roller.ChangedClang(localScript, string(remoteScript))
}

const defaultCommitQueueOver = 1

// commitQueueMode picks the commit-queue behavior from the roll distance.
func commitQueueMode(opts RollOptions, positions roller.CommitPositions) CommitQueueMode {
	if opts.SkipCommitQueue {
		return CommitQueueSkip
	}
	over := opts.CommitQueueOver
	if over <= 0 {
		over = defaultCommitQueueOver
	}
	if positions.New-positions.Current < over {
		return CommitQueueDryRun
	}
	return CommitQueueSubmit
}
