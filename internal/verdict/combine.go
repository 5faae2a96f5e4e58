package verdict

// Combine merges the transcript and thumbnail branch results with the
// fetched metadata into a final Verdict. It is a total function over all
// four (ok/err x ok/err) combinations: a branch error forces that branch's
// is_safe_* to false and its *_reason to the error detail (fail-closed,
// spec §4.5/§7 — an unavailable classifier is treated the same as a
// classifier saying "not safe").
func Combine(transcript, thumbnail BranchResult, meta Metadata) Verdict {
	transcriptSafe, transcriptReason := resolveBranch(transcript)
	thumbnailSafe, thumbnailReason := resolveBranch(thumbnail)

	overallSafe := transcriptSafe && thumbnailSafe

	return Verdict{
		VideoID:          meta.VideoID,
		IsSafe:           overallSafe,
		IsSafeTranscript: transcriptSafe,
		IsSafeThumbnail:  thumbnailSafe,
		TranscriptReason: truncate(transcriptReason, MaxReasonLen),
		ThumbnailReason:  truncate(thumbnailReason, MaxReasonLen),
		OverallReason:    truncate(composeOverallReason(overallSafe, transcriptSafe, thumbnailSafe), MaxReasonLen),
		VideoTitle:       meta.Title,
		ChannelTitle:     meta.ChannelTitle,
	}
}

func resolveBranch(b BranchResult) (safe bool, reason string) {
	if b.Kind == BranchErr {
		return false, b.ErrDetail
	}
	return b.Safe, b.Reason
}

func composeOverallReason(overallSafe, transcriptSafe, thumbnailSafe bool) string {
	switch {
	case overallSafe:
		return "Safe: both the transcript and the thumbnail are appropriate for a young child."
	case !transcriptSafe && !thumbnailSafe:
		return "Unsafe: both the transcript and the thumbnail contain content inappropriate for a young child."
	case !transcriptSafe:
		return "Unsafe: the transcript contains content inappropriate for a young child, despite a safe thumbnail."
	default:
		return "Unsafe: the thumbnail contains imagery inappropriate for a young child, despite a safe transcript."
	}
}
