package services

import (
	"github.com/yungbote/sessioncache/internal/domain"
)

// DemoResult captures what the outer caller's retained product looked like
// before and after the nested snapshot call.
type DemoResult struct {
	IDBeforeCall         int64  `json:"idBeforeCall"`
	CategoryIDBeforeCall int64  `json:"categoryIdBeforeCall"`
	NameBeforeCall       string `json:"nameBeforeCall"`
	IDAfterCall          int64  `json:"idAfterCall"`
	CategoryIDAfterCall  int64  `json:"categoryIdAfterCall"`
	NameAfterCall        string `json:"nameAfterCall"`
	// DataCorrupted is true when the retained instance changed under the caller.
	DataCorrupted bool   `json:"dataCorrupted"`
	Policy        string `json:"policy"`
	Strategy      string `json:"strategy"`
	SnapshotID    int64  `json:"snapshotId"`
}

func newDemoResult(before, after domain.ProductView) *DemoResult {
	return &DemoResult{
		IDBeforeCall:         before.ID,
		CategoryIDBeforeCall: before.CategoryID,
		NameBeforeCall:       before.Name,
		IDAfterCall:          after.ID,
		CategoryIDAfterCall:  after.CategoryID,
		NameAfterCall:        after.Name,
		DataCorrupted:        before != after,
	}
}

func (r *DemoResult) Before() domain.ProductView {
	return domain.ProductView{ID: r.IDBeforeCall, CategoryID: r.CategoryIDBeforeCall, Name: r.NameBeforeCall}
}

func (r *DemoResult) After() domain.ProductView {
	return domain.ProductView{ID: r.IDAfterCall, CategoryID: r.CategoryIDAfterCall, Name: r.NameAfterCall}
}
