package shared

import (
	"errors"
	"fmt"
	"strings"
)

// ScopeKind distinguishes tenant data from demo sandbox data.
type ScopeKind string

const (
	ScopeTenant ScopeKind = "tenant"
	ScopeDemo   ScopeKind = "demo"
)

// ErrScopeRequired indicates a call without a tenant or demo scope.
var ErrScopeRequired = errors.New("shared: tenant scope required")

// Scope identifies the partition every ledger record belongs to.
// Exactly one of TenantID or DemoUserID is set.
type Scope struct {
	TenantID   string
	DemoUserID string
}

// TenantScope builds a scope for a tenant.
func TenantScope(id string) Scope {
	return Scope{TenantID: id}
}

// DemoScope builds a scope for a demo user sandbox.
func DemoScope(id string) Scope {
	return Scope{DemoUserID: id}
}

// Kind reports which partition the scope addresses.
func (s Scope) Kind() ScopeKind {
	if s.TenantID != "" {
		return ScopeTenant
	}
	return ScopeDemo
}

// Validate ensures exactly one identifier is present.
func (s Scope) Validate() error {
	tenant := strings.TrimSpace(s.TenantID)
	demo := strings.TrimSpace(s.DemoUserID)
	if (tenant == "") == (demo == "") {
		return ErrScopeRequired
	}
	return nil
}

// Key returns the storage partition key, e.g. "tenant:42".
func (s Scope) Key() string {
	if s.TenantID != "" {
		return string(ScopeTenant) + ":" + s.TenantID
	}
	return string(ScopeDemo) + ":" + s.DemoUserID
}

func (s Scope) String() string {
	return s.Key()
}

// ParseScopeKey reverses Scope.Key.
func ParseScopeKey(key string) (Scope, error) {
	kind, id, ok := strings.Cut(key, ":")
	if !ok || id == "" {
		return Scope{}, fmt.Errorf("shared: malformed scope key %q", key)
	}
	switch ScopeKind(kind) {
	case ScopeTenant:
		return TenantScope(id), nil
	case ScopeDemo:
		return DemoScope(id), nil
	default:
		return Scope{}, fmt.Errorf("shared: unknown scope kind %q", kind)
	}
}
