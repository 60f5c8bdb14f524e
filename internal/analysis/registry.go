package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/gigsight/gigsight/internal/dataset"
)

// Operation is one registered analysis: a kind and its computation.
type Operation struct {
	Kind Kind
	Run  func(ctx context.Context, p Params) (any, error)
}

// Registry maps analysis kinds to their operations. It is built only after
// the dataset exists, so no entry can ever hold an uninitialized store.
type Registry struct {
	ops map[Kind]Operation
}

// NewRegistry builds the dispatch table over a loaded store. Adding or
// removing an analysis is a one-entry edit here.
func NewRegistry(store *dataset.Store) *Registry {
	ops := make(map[Kind]Operation)
	register := func(kind Kind, run func(ctx context.Context, p Params) (any, error)) {
		ops[kind] = Operation{Kind: kind, Run: run}
	}

	register(KindCryptoVsOther, func(ctx context.Context, _ Params) (any, error) {
		return cryptoVsOther(ctx, store)
	})
	register(KindEarningsByRegion, func(ctx context.Context, _ Params) (any, error) {
		return store.CategoryMeans(ctx, "region")
	})
	register(KindExpertProjects, func(ctx context.Context, _ Params) (any, error) {
		return expertProjects(ctx, store)
	})
	register(KindEarningsByExperience, func(ctx context.Context, _ Params) (any, error) {
		return store.ExperienceMeans(ctx)
	})
	register(KindTopSkills, func(ctx context.Context, p Params) (any, error) {
		return topSkills(ctx, store, p.TopN)
	})
	register(KindEarningsByEducation, func(ctx context.Context, _ Params) (any, error) {
		return store.CategoryMeans(ctx, "education_level")
	})

	return &Registry{ops: ops}
}

// Lookup returns the operation for a kind, if registered.
func (r *Registry) Lookup(kind Kind) (Operation, bool) {
	op, ok := r.ops[kind]
	return op, ok
}

// Run executes the operation for a kind and wraps its payload in a Result.
func (r *Registry) Run(ctx context.Context, kind Kind, p Params) (Result, error) {
	op, ok := r.ops[kind]
	if !ok {
		return Result{}, fmt.Errorf("kind %q is not registered", kind)
	}
	payload, err := op.Run(ctx, p)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: kind, Payload: payload}, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.ops))
	for k := range r.ops {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
