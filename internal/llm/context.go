package llm

import (
	"context"
	"strings"
)

// PurposeUnknown labels calls made without WithPurpose.
const PurposeUnknown = "unknown"

type purposeKey struct{}

// WithPurpose labels the calls made with ctx, e.g. "tutor-chat", so the
// event log can group usage. A blank label leaves ctx unchanged.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return ctx
	}
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the innermost purpose label on ctx.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return PurposeUnknown
}
