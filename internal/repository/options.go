package repository

import "usertask-manager/internal/domain"

// ListOptions narrows and windows a listing. A zero Limit returns every row.
type ListOptions struct {
	Search string
	Status domain.TaskStatus
	Offset int
	Limit  int
}

// PageOptions converts a page query into list options.
func PageOptions(q domain.PageQuery) ListOptions {
	return ListOptions{
		Search: q.Search,
		Status: q.Status,
		Offset: q.Offset(),
		Limit:  q.Limit(),
	}
}
