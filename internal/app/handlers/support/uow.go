package support

import (
	"context"

	"homestay/internal/app/uow"
)

// BeginReadOnlyUnit reuses a unit of work already on the context or starts a
// read-only one, returning a cleanup that rolls the fresh unit back.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := ctx
	if injector, ok := newUnit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// BeginWriteUnit mirrors BeginReadOnlyUnit for command handlers that may run
// outside the transaction middleware. The returned commit func is a no-op
// when the unit came from context; the managing middleware owns it then.
func BeginWriteUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func() error, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, func() error { return nil }, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, nil, err
	}
	execCtx := ctx
	if injector, ok := newUnit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, newUnit)
	committed := false
	commit := func() error {
		if err := newUnit.Commit(execCtx); err != nil {
			return err
		}
		committed = true
		return nil
	}
	cleanup := func() {
		if !committed {
			_ = newUnit.Rollback(execCtx)
		}
	}
	return newUnit, execCtx, commit, cleanup, nil
}
