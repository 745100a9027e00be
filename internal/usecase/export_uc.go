package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/phenrril/kitos/internal/domain"
)

const exportConcurrency = 4

type ExportUC struct {
	Designs  domain.DesignRepo
	Variants domain.VariantRepo
	// Concurrency bounds the parallel variant reads; zero means a default of 4.
	Concurrency int
}

// Snapshot loads every design with its variants. Result order follows the design listing.
func (uc *ExportUC) Snapshot(ctx context.Context) ([]domain.DesignVariants, error) {
	designs, err := uc.Designs.List(ctx, domain.DesignFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.DesignVariants, len(designs))
	g, gctx := errgroup.WithContext(ctx)
	limit := uc.Concurrency
	if limit <= 0 {
		limit = exportConcurrency
	}
	g.SetLimit(limit)
	for i := range designs {
		i := i
		out[i].Design = designs[i]
		g.Go(func() error {
			vs, err := uc.Variants.ListByDesign(gctx, designs[i].ID)
			if err != nil {
				return err
			}
			out[i].Variants = vs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
