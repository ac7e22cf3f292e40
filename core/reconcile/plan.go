package reconcile

import (
	"context"
	"fmt"
)

// Plan builds a fresh index and returns the results with the actions opts calls for.
// It does NOT execute actions; use Apply for that.
func (e *Engine) Plan(ctx context.Context, opts Options) (*Plan, error) {
	idx, err := e.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}

	e.cache.mu.Lock()
	if e.spec.CacheTTL > 0 {
		e.cache.index = idx
	}
	e.cache.mu.Unlock()

	results := resultsFromIndex(idx)
	summary, actions := buildPlanFromResults(results, idx, opts)
	return &Plan{
		Results: results,
		Actions: actions,
		Summary: summary,
	}, nil
}

// Apply executes the actions of plan through m and returns how many ran.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func (e *Engine) Apply(ctx context.Context, plan *Plan, opts Options, m Mutator) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}
	defer e.Invalidate()

	var (
		deleteCatalog []string
		release       []string
		addCatalog    []string
		preload       []Action
	)
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionDeleteCatalog:
			deleteCatalog = append(deleteCatalog, action.Object)
		case ActionReleaseTexture:
			release = append(release, action.Object)
		case ActionAddCatalog:
			addCatalog = append(addCatalog, action.Object)
		case ActionPreload:
			preload = append(preload, action)
		}
	}

	if len(deleteCatalog) > 0 {
		if batch, ok := m.(CatalogBatchDeleter); ok {
			if err := batch.DeleteCatalogBatch(ctx, deleteCatalog); err != nil {
				return executed, fmt.Errorf("failed to batch delete catalog rows: %w", err)
			}
			executed += len(deleteCatalog)
		} else {
			for _, object := range deleteCatalog {
				if err := m.DeleteCatalog(ctx, object); err != nil {
					return executed, fmt.Errorf("failed to delete catalog row %s: %w", object, err)
				}
				executed++
			}
		}
	}

	for _, object := range release {
		if err := m.ReleaseTextures(ctx, object); err != nil {
			return executed, fmt.Errorf("failed to release textures of %s: %w", object, err)
		}
		executed++
	}

	for _, object := range addCatalog {
		if err := m.AddCatalog(ctx, object); err != nil {
			return executed, fmt.Errorf("failed to add catalog row %s: %w", object, err)
		}
		executed++
	}

	for _, action := range preload {
		if action.Asset == nil {
			continue
		}
		if err := m.Preload(ctx, *action.Asset); err != nil {
			return executed, fmt.Errorf("failed to preload %s: %w", action.Object, err)
		}
		executed++
	}

	return executed, nil
}

// PlanAndApply plans and, when opts allow, applies the plan.
func (e *Engine) PlanAndApply(ctx context.Context, opts Options, m Mutator) (*Plan, int, error) {
	plan, err := e.Plan(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	executed, err := e.Apply(ctx, plan, opts, m)
	return plan, executed, err
}

// buildPlanFromResults generates a summary and action plan from reconciliation results.
func buildPlanFromResults(results []Result, idx *Index, opts Options) (Summary, []Action) {
	var summary Summary
	var actions []Action

	summary.TotalObjects = len(results)

	for _, result := range results {
		asset, inCatalog := idx.Catalog[result.Object]

		if (result.CatalogPresent || result.Registered) && !result.StoragePresent {
			summary.MissingStorage++
		}
		if (result.StoragePresent || result.Registered) && !result.CatalogPresent {
			summary.MissingCatalog++
		}
		if inCatalog && asset.Preload && !result.Registered {
			summary.Unregistered++
		}
		if len(result.Mismatch) > 0 {
			summary.Mismatches++
		}

		// Purge: the object is gone, drop what still points at it.
		if opts.DoPurge && !result.StoragePresent {
			if result.CatalogPresent {
				actions = append(actions, Action{
					Type:   ActionDeleteCatalog,
					Object: result.Object,
					Reason: "missing in storage",
				})
				summary.PurgeActions++
			}
			if result.Registered {
				actions = append(actions, Action{
					Type:   ActionReleaseTexture,
					Object: result.Object,
					Reason: "missing in storage",
				})
				summary.PurgeActions++
			}
			continue
		}

		if !opts.DoSync || !result.StoragePresent {
			continue
		}
		if !result.CatalogPresent {
			actions = append(actions, Action{
				Type:   ActionAddCatalog,
				Object: result.Object,
				Reason: "missing in catalog",
			})
			summary.SyncActions++
		} else if asset.Preload && !result.Registered {
			actions = append(actions, Action{
				Type:   ActionPreload,
				Object: result.Object,
				Reason: "preload row not registered",
				Asset:  &asset,
			})
			summary.SyncActions++
		}
	}

	return summary, actions
}
