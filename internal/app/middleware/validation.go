package middleware

import (
	"context"
	"errors"
	"fmt"

	"homestay/internal/app/commands"
	"homestay/internal/app/queries"
)

// ErrValidation wraps every self-validation failure so transport layers can
// classify them without knowing individual messages.
var ErrValidation = errors.New("validation failed")

// SelfValidating is implemented by commands and queries that can check their
// own input before a handler runs.
type SelfValidating interface {
	Validate() error
}

// Validation rejects self-validating commands whose input is malformed.
func Validation() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if v, ok := cmd.(SelfValidating); ok {
				if err := v.Validate(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrValidation, err)
				}
			}
			return nextFn(ctx, cmd)
		})
	}
}

// QueryValidation mirrors Validation for the query bus.
func QueryValidation() QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if v, ok := q.(SelfValidating); ok {
				if err := v.Validate(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrValidation, err)
				}
			}
			return nextFn(ctx, q)
		})
	}
}
