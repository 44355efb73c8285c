package server

import "context"

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// HealthCheckerFunc adapts a function to HealthChecker.
type HealthCheckerFunc func(ctx context.Context) bool

func (f HealthCheckerFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

// NewOkHealthChecker reports healthy unconditionally, for servers without
// backing services.
func NewOkHealthChecker() HealthChecker {
	return HealthCheckerFunc(func(context.Context) bool { return true })
}

// All is healthy only when every checker is.
func All(checkers ...HealthChecker) HealthChecker {
	return HealthCheckerFunc(func(ctx context.Context) bool {
		for _, hc := range checkers {
			if !hc.Healthy(ctx) {
				return false
			}
		}
		return true
	})
}
