package listing

import "context"

// Store executes a predicate+sort+skip/take query and reports the total
// row count matching the same predicate.
type Store[T any] interface {
	Query(ctx context.Context, pred Predicate, sort Sort, skip, take int) (items []T, total int, err error)
}

// Service composes filtering and pagination into one list operation.
// Resource modules are thin instantiations of this with their own entity
// type and filter fields.
type Service[T any] struct {
	Store       Store[T]
	DefaultSize int
	DefaultSort Sort
}

// List runs a single logical read: the count and the rows are derived from
// one immutable predicate, so the metadata is consistent with the items.
func (s Service[T]) List(ctx context.Context, crit Criteria, req PageRequest, sort Sort) (PageResult[T], error) {
	if sort.Field == "" {
		sort = s.DefaultSort
	}

	pred := crit.Predicate()
	items, total, err := s.Store.Query(ctx, pred, sort, req.Skip(), req.Size)
	if err != nil {
		return PageResult[T]{}, err
	}
	if items == nil {
		items = []T{}
	}

	meta := Paginate(req, total)
	return PageResult[T]{
		Items:       items,
		Total:       meta.Total,
		CurrentPage: meta.CurrentPage,
		TotalPages:  meta.TotalPages,
		HasNext:     meta.HasNext,
		HasPrev:     meta.HasPrev,
	}, nil
}
