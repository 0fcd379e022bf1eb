package repos

import (
	"github.com/yungbote/sessioncache/internal/data/repos/product"
	"github.com/yungbote/sessioncache/internal/data/sequence"
	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

type ProductRepo = product.ProductRepo

func NewProductRepo(st store.RecordStore, seq sequence.Sequence, log *logger.Logger) ProductRepo {
	return product.NewProductRepo(st, seq, log)
}
