// Package orchestrator implements C8, the verdict service's single public
// operation: given a video URL, produce a Verdict by coordinating identity
// extraction, the rate-limit gate, the cache, and the two classifier
// branches.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/happyscroll/verdict-service/internal/apierr"
	"github.com/happyscroll/verdict-service/internal/cache"
	"github.com/happyscroll/verdict-service/internal/identity"
	"github.com/happyscroll/verdict-service/internal/ratelimit"
	"github.com/happyscroll/verdict-service/internal/verdict"
	"github.com/happyscroll/verdict-service/pkg/hash"
)

// MetadataFetcher is C2's contract as seen by the orchestrator.
type MetadataFetcher interface {
	Fetch(ctx context.Context, videoID string) (verdict.Metadata, error)
}

// ThumbnailClassifier is C3's contract as seen by the orchestrator.
type ThumbnailClassifier interface {
	Analyze(ctx context.Context, thumbnailURL string) verdict.BranchResult
}

// TranscriptClassifier is C4's contract as seen by the orchestrator.
type TranscriptClassifier interface {
	Classify(ctx context.Context, meta verdict.Metadata) verdict.BranchResult
}

// Orchestrator wires C1, C2, C3, C4, C5, C6, and C7 together behind
// GetVerdict.
type Orchestrator struct {
	cache      *cache.Cache
	gate       *ratelimit.Gate
	meta       MetadataFetcher
	thumbnails ThumbnailClassifier
	transcript TranscriptClassifier
	log        zerolog.Logger
}

// New constructs an Orchestrator from its collaborators.
func New(c *cache.Cache, gate *ratelimit.Gate, meta MetadataFetcher, thumbnails ThumbnailClassifier, transcript TranscriptClassifier, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{cache: c, gate: gate, meta: meta, thumbnails: thumbnails, transcript: transcript, log: log}
}

// GetVerdict runs the full six-step algorithm: extract the video id,
// precheck the budget, consult the cache, commit budget on a miss, build
// under single-flight, and return. clientID may be empty; when non-empty
// it is additionally checked against the per-client counter, a second
// enforcement layer alongside the browser extension's own client-side
// limit per spec §4.7 — both reject, neither alone is relied on.
func (o *Orchestrator) GetVerdict(ctx context.Context, inputURL, clientID string) (verdict.Verdict, error) {
	// Step 1.
	videoID, err := identity.Extract(inputURL)
	if err != nil {
		return verdict.Verdict{}, mapIdentityError(err)
	}

	// Step 2. Precheck does not reject on its own; it only determines
	// whether a cache miss should short-circuit before doing any upstream
	// work. The per-client key is hashed so the counter's keyspace and any
	// derived logs never carry the raw client identifier.
	globalStatus := o.gate.Global.Precheck()
	perClientEnabled := o.gate.PerClient != nil && clientID != ""
	var hashedClientID string
	var perClientStatus ratelimit.Status
	if perClientEnabled {
		hashedClientID = hash.HashClientID(clientID)
		perClientStatus = o.gate.PerClient.Precheck(hashedClientID)
	}

	// Step 3. Cache consultation precedes budget commit so a hit observed
	// here never spends budget, and is never denied for budget reasons
	// regardless of which tier would have rejected it.
	if cached, ok := o.cache.Get(ctx, videoID); ok {
		return *cached, nil
	}

	if !globalStatus.Allowed {
		return verdict.Verdict{}, apierr.NewBudgetExhausted("global daily analysis budget exhausted", globalStatus.Limit, globalStatus.CountToday)
	}
	if perClientEnabled && !perClientStatus.Allowed {
		return verdict.Verdict{}, apierr.NewPerClientBudgetExhausted("per-client daily analysis budget exhausted", perClientStatus.Limit, perClientStatus.CountToday)
	}

	// Step 4. Commit on the miss path only; a failure here means another
	// concurrent request consumed the last slot between precheck and here.
	commitStatus := o.gate.Global.Commit()
	if !commitStatus.Allowed {
		return verdict.Verdict{}, apierr.NewBudgetExhausted("global daily analysis budget exhausted", commitStatus.Limit, commitStatus.CountToday)
	}
	if perClientEnabled {
		clientCommitStatus := o.gate.PerClient.Commit(hashedClientID)
		if !clientCommitStatus.Allowed {
			return verdict.Verdict{}, apierr.NewPerClientBudgetExhausted("per-client daily analysis budget exhausted", clientCommitStatus.Limit, clientCommitStatus.CountToday)
		}
	}

	// Step 5. GetOrCompute re-checks the cache under single-flight
	// discipline, closing the race between step 3's lookup and here.
	return o.cache.GetOrCompute(ctx, videoID, func(ctx context.Context) (verdict.Verdict, error) {
		return o.build(ctx, videoID)
	})
}

// Deadlines applied to each upstream call made during a build.
const (
	metadataTimeout   = 10 * time.Second
	classifierTimeout = 30 * time.Second
)

// build runs C2 then fans out C3/C4 concurrently, waiting for both before
// combining. Neither branch is cancelled on the other's failure: the
// product requires both reasons in the response even when one branch
// failed. The metadata fetch is bounded by metadataTimeout and each
// classifier call by classifierTimeout.
func (o *Orchestrator) build(ctx context.Context, videoID string) (verdict.Verdict, error) {
	metaCtx, cancelMeta := context.WithTimeout(ctx, metadataTimeout)
	meta, err := o.meta.Fetch(metaCtx, videoID)
	cancelMeta()
	if err != nil {
		return verdict.Verdict{}, err
	}

	var transcriptResult, thumbnailResult verdict.BranchResult
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, classifierTimeout)
		defer cancel()
		transcriptResult = o.transcript.Classify(branchCtx, meta)
	}()
	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, classifierTimeout)
		defer cancel()
		thumbnailResult = o.thumbnails.Analyze(branchCtx, meta.ThumbnailURL)
	}()
	wg.Wait()

	return verdict.Combine(transcriptResult, thumbnailResult, meta), nil
}

func mapIdentityError(err error) error {
	switch err {
	case identity.ErrInvalidURL:
		return apierr.New(apierr.InvalidURL, err.Error())
	case identity.ErrUnextractableID:
		return apierr.New(apierr.UnextractableID, err.Error())
	default:
		return apierr.New(apierr.InvalidURL, err.Error())
	}
}
