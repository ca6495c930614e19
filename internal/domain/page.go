package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// PageQuery selects one page of a listing. Use NewPageQuery to get
// normalised values.
type PageQuery struct {
	Page     int
	PageSize int
	Search   string
	Status   TaskStatus
}

// NewPageQuery floors page at 1 and clamps pageSize to [1, MaxPageSize].
func NewPageQuery(page, pageSize int) PageQuery {
	return PageQuery{Page: page, PageSize: pageSize, Status: TaskStatusAll}.Normalize()
}

// Normalize returns q with page and pageSize brought into range.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize < 1:
		q.PageSize = 1
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	if q.Status == "" {
		q.Status = TaskStatusAll
	}
	return q
}

// Offset is the number of rows skipped before this page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Limit is the number of rows in a full page.
func (q PageQuery) Limit() int {
	return q.PageSize
}
