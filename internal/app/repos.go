package app

import (
	"github.com/yungbote/sessioncache/internal/data/repos"
	"github.com/yungbote/sessioncache/internal/data/sequence"
	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

type Repos struct {
	Product repos.ProductRepo
}

func wireRepos(st store.RecordStore, seq sequence.Sequence, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Product: repos.NewProductRepo(st, seq, log),
	}
}
