package plugin

import (
	"context"
	"errors"
)

// Runtime is the host capability plugins use to look up settings.
type Runtime interface {
	// GetSetting returns the value stored under key and whether it was present.
	GetSetting(key string) (string, bool)
}

// RuntimeFunc adapts a function to the Runtime interface.
type RuntimeFunc func(key string) (string, bool)

// GetSetting implements Runtime.
func (f RuntimeFunc) GetSetting(key string) (string, bool) { return f(key) }

// Action is a single capability a plugin exposes to the host agent.
type Action interface {
	// Name is the unique identifier the host uses to select the action.
	Name() string
	// Similes are alternative names that also resolve to this action.
	Similes() []string
	Description() string
	// Examples are sample conversations that should trigger the action.
	Examples() [][]Example
	// Capabilities lists the features the action needs at runtime.
	Capabilities() []Capability
	// Validate checks whether the action can run with the given runtime.
	Validate(ctx context.Context, rt Runtime) error
	// Handle runs the action and delivers the result through cb. The boolean reports
	// whether a result was produced. Upstream failures are delivered through cb as
	// error-shaped content. A returned error is either fatal (see IsFatal) or a
	// failure that produced no deliverable content.
	Handle(ctx context.Context, rt Runtime, msg Message, cb Callback) (bool, error)
}

// Plugin groups a set of actions under one identity.
type Plugin interface {
	Info() Info
	Actions() []Action
}

// IsFatal reports whether err must abort the invocation rather than count as a soft
// failure. Errors opt in by implementing Fatal() bool.
func IsFatal(err error) bool {
	var f interface{ Fatal() bool }
	return errors.As(err, &f) && f.Fatal()
}

type invocationKey struct{}

// WithInvocationID stores the invocation identifier on the context.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationKey{}, id)
}

// InvocationID returns the invocation identifier carried by ctx, if any.
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationKey{}).(string)
	return id
}
