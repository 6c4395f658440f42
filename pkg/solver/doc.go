// Package solver manages the lifecycle of licensed solver environments
// and routes solve requests through them.
//
// The scarce resource here is the backend's licensed environment: it may
// be held exclusively by another handle in this process or by another
// process entirely, so every acquisition is fallible and every failure is
// retryable once the contending holder releases. Release is explicit and
// immediate; nothing is left to finalization.
//
// An Adapter binds one environment to a sequence of solves:
//
//	err := solver.Do(ctx, backend, solver.Config{
//	    ManageEnv: true,
//	    Options:   map[string]interface{}{"TimeLimit": 60.0},
//	}, func(ctx context.Context, a *solver.Adapter) error {
//	    sol, err := a.Solve(ctx, problem, nil)
//	    ...
//	})
//
// Options are classified by a fixed registry: connection and
// license-scoped names apply to the environment before it starts, all
// others to the per-solve model. Each merged option lands in exactly one
// of the two.
package solver
