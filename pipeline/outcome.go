package pipeline

import "fmt"

// OutcomeKind enumerates the terminal states of a pipeline run.
type OutcomeKind int

const (
	// Delivered means the video was re-posted as an attachment.
	Delivered OutcomeKind = iota
	// DownloadFailed means the fetch collaborator could not produce a file.
	DownloadFailed
	// TooLarge means the file exceeded the budget and compression was disabled.
	TooLarge
	// CompressionFailed means the compression ladder was exhausted over budget.
	CompressionFailed
	// UploadFailed means the delivery collaborator rejected the final asset.
	UploadFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case Delivered:
		return "delivered"
	case DownloadFailed:
		return "download_failed"
	case TooLarge:
		return "too_large"
	case CompressionFailed:
		return "compression_failed"
	case UploadFailed:
		return "upload_failed"
	default:
		return "unknown"
	}
}

// Outcome is the single value a pipeline run resolves to. It drives exactly
// one downstream notification plus a best-effort status marker.
type Outcome struct {
	Kind         OutcomeKind
	Path         string // delivered file path (Delivered only)
	Size         int64  // delivered byte size (Delivered only)
	OriginalSize int64  // pre-compression size (TooLarge, CompressionFailed)
	Platform     string // source platform name, for user-facing text
}

// UserMessage returns the literal reply text for a failure outcome, or "" for
// Delivered (the attachment itself is the reply).
func (o Outcome) UserMessage(limit int64) string {
	switch o.Kind {
	case DownloadFailed:
		return fmt.Sprintf("Unable to download video from %s. The video may be private, deleted, or the platform is blocking the request.", o.Platform)
	case TooLarge:
		return fmt.Sprintf("Video is too large to upload (%.2fMB exceeds %.0fMB limit).", toMB(o.OriginalSize), toMB(limit))
	case CompressionFailed:
		return fmt.Sprintf("Video is too large (%.2fMB) and could not be compressed enough to fit the %.0fMB limit. Try posting a shorter video or lowering the quality.", toMB(o.OriginalSize), toMB(limit))
	case UploadFailed:
		return "An unexpected error occurred while uploading the video."
	default:
		return ""
	}
}

func toMB(n int64) float64 { return float64(n) / 1024 / 1024 }
