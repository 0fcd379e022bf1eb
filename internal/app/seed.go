package app

import (
	"context"
	"errors"

	"github.com/yungbote/sessioncache/internal/data/repos"
	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/data/txrunner"
	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/platform/dbctx"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

// demoProduct is the row the demo endpoint operates on by default.
func demoProduct() *domain.Product {
	return &domain.Product{ID: 1, CategoryID: 10, Name: "Widget"}
}

// seedDemoData inserts the demo product unless a row with its id exists.
func seedDemoData(ctx context.Context, runner txrunner.TxRunner, products repos.ProductRepo, log *logger.Logger) error {
	seeded := false
	err := runner.InTxNamed(ctx, "seed.demo", func(dbc dbctx.Context) error {
		p := demoProduct()
		if _, err := products.LoadByID(dbc, p.ID); err == nil {
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if _, err := products.Insert(dbc, p); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return err
	}
	if seeded {
		log.Info("demo product seeded", "product", demoProduct().View())
	}
	return nil
}
