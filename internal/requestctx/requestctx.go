package requestctx

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	actorKey     ctxKey = "actor"
)

// SystemActor is recorded for work not triggered by an authenticated user.
const SystemActor = "system"

type Actor struct {
	ID    string
	Email string
	Role  string
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func GetActor(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}

// ActorName is the identity written to audit entries and review fields.
func ActorName(ctx context.Context) string {
	actor, ok := GetActor(ctx)
	if !ok {
		return SystemActor
	}
	if actor.Email != "" {
		return actor.Email
	}
	if actor.ID != "" {
		return actor.ID
	}
	return SystemActor
}
