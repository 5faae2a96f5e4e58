// Package visionsafety implements C3: classifying a video's thumbnail image
// using Google Cloud Vision's SafeSearch detector.
package visionsafety

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/happyscroll/verdict-service/internal/verdict"
)

// likelihoodRank mirrors Vision's ordinal Likelihood scale so a
// configured threshold can be compared numerically.
var likelihoodRank = map[string]int{
	"UNKNOWN":       0,
	"VERY_UNLIKELY": 1,
	"UNLIKELY":      2,
	"POSSIBLE":      3,
	"LIKELY":        4,
	"VERY_LIKELY":   5,
}

// forceFailCategories are flagged purely by crossing the threshold; medical
// and spoof are informational only and never flip a verdict to unsafe on
// their own, matching the product's existing category weighting.
var forceFailCategories = map[string]bool{
	"adult":    true,
	"violence": true,
	"racy":     true,
}

// Analyzer downloads a thumbnail and classifies it via SafeSearch.
type Analyzer struct {
	vis        *vision.Service
	httpClient *http.Client
	threshold  string
	log        zerolog.Logger
}

// New constructs an Analyzer. threshold is one of Vision's Likelihood
// names (e.g. "POSSIBLE") and sets the minimum level at which a category is
// flagged.
func New(ctx context.Context, apiKey, threshold string, log zerolog.Logger) (*Analyzer, error) {
	if _, ok := likelihoodRank[threshold]; !ok {
		return nil, fmt.Errorf("visionsafety: unknown threshold %q", threshold)
	}

	svc, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("visionsafety: constructing vision service: %w", err)
	}

	return &Analyzer{
		vis:        svc,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		threshold:  threshold,
		log:        log,
	}, nil
}

// Analyze downloads thumbnailURL and returns a BranchResult: OK(true) when
// no category crosses the threshold, OK(false) with the flagged category
// list as the reason when one does, or Err(...) when the image could not be
// fetched or classified.
func (a *Analyzer) Analyze(ctx context.Context, thumbnailURL string) verdict.BranchResult {
	imageBytes, err := a.downloadImage(ctx, thumbnailURL)
	if err != nil {
		return verdict.Err("ImageFetchFailed", err.Error())
	}

	annotation, err := a.classify(ctx, imageBytes)
	if err != nil {
		return verdict.Err("ClassifierUnavailable", err.Error())
	}

	return evaluateSafeSearch(annotation, a.threshold)
}

func (a *Analyzer) downloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("visionsafety: thumbnail fetch returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (a *Analyzer) classify(ctx context.Context, imageBytes []byte) (*vision.SafeSearchAnnotation, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(imageBytes)},
				Features: []*vision.Feature{{Type: "SAFE_SEARCH_DETECTION"}},
			},
		},
	}

	resp, err := a.vis.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("visionsafety: empty annotate response")
	}
	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("visionsafety: %s", resp.Responses[0].Error.Message)
	}

	return resp.Responses[0].SafeSearchAnnotation, nil
}

// evaluateSafeSearch applies the threshold to each category and composes a
// reason string naming every category that crossed it. Only force-fail
// categories make the result unsafe; medical and spoof are listed as
// informational.
func evaluateSafeSearch(a *vision.SafeSearchAnnotation, threshold string) verdict.BranchResult {
	thresholdRank := likelihoodRank[threshold]

	categories := map[string]string{
		"adult":    a.Adult,
		"violence": a.Violence,
		"racy":     a.Racy,
		"medical":  a.Medical,
		"spoof":    a.Spoof,
	}

	var flagged, informational []string
	for _, name := range []string{"adult", "violence", "racy", "medical", "spoof"} {
		level := categories[name]
		if likelihoodRank[level] < thresholdRank {
			continue
		}
		if forceFailCategories[name] {
			flagged = append(flagged, name)
		} else {
			informational = append(informational, name)
		}
	}

	note := ""
	if len(informational) > 0 {
		note = " (informational: " + strings.Join(informational, ", ") + ")"
	}

	if len(flagged) == 0 {
		return verdict.OK(true, "no flagged categories at threshold "+threshold+note)
	}

	reason := "flagged:"
	for i, name := range flagged {
		if i > 0 {
			reason += ","
		}
		reason += " " + name
	}
	return verdict.OK(false, reason+note)
}
