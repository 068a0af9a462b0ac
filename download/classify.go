package download

import "strings"

// ErrorClass distinguishes fetch failures that are inherent to the content
// from transient ones. Fetch failures are never retried either way (the user
// can just post the link again); the class feeds logging and metrics so
// platform blocking shows up distinctly from flaky networks.
type ErrorClass int

const (
	// ClassContent covers private, deleted, geo-blocked, or otherwise
	// permanently unfetchable videos.
	ClassContent ErrorClass = iota
	// ClassTransient covers network and server-side hiccups.
	ClassTransient
	// ClassUnknown covers everything that matches no known pattern.
	ClassUnknown
)

func (ec ErrorClass) String() string {
	switch ec {
	case ClassContent:
		return "content"
	case ClassTransient:
		return "transient"
	default:
		return "unknown"
	}
}

var contentPatterns = []string{
	"private",
	"this video is unavailable",
	"video unavailable",
	"not available",
	"has been removed",
	"deleted",
	"404",
	"not found",
	"login required",
	"sign in to confirm",
	"age-restricted",
	"unable to extract",
	"unsupported url",
	"no video formats found",
	"blocked in your country",
}

var transientPatterns = []string{
	"timed out",
	"timeout",
	"connection reset",
	"connection refused",
	"temporary failure in name resolution",
	"network unreachable",
	"429",
	"too many requests",
	"rate limit",
	"500",
	"502",
	"503",
	"504",
	"internal server error",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
}

// Classify inspects a fetch error's text and assigns it a class. Content
// errors are checked first: a platform telling us a video is gone is more
// specific than any embedded status code.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}
	lower := strings.ToLower(err.Error())
	for _, p := range contentPatterns {
		if strings.Contains(lower, p) {
			return ClassContent
		}
	}
	for _, p := range transientPatterns {
		if strings.Contains(lower, p) {
			return ClassTransient
		}
	}
	return ClassUnknown
}
