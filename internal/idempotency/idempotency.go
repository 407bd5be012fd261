package idempotency

import (
	"context"
)

const HeaderName = "Idempotency-Key"

type ctxKey struct{}

func WithKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, key)
}

// FromContext returns the idempotency key supplied by the client, if any.
func FromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(ctxKey{}).(string)
	return key, ok && key != ""
}

// EventKey derives the idempotency key of an integration event from the record it
// describes, so retries of the same change always carry the same key.
func EventKey(eventName, recordID string) string {
	return eventName + ":" + recordID
}
