package shared

import "context"

type scopeContextKey struct{}

type actorContextKey struct{}

// ContextWithScope stores the tenant scope in context.
func ContextWithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext extracts the tenant scope from context.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(scopeContextKey{}).(Scope)
	if !ok || scope.Validate() != nil {
		return Scope{}, false
	}
	return scope, true
}

// ContextWithActor stores the acting user identifier in context.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the acting user, empty when unknown.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}
