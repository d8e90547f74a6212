package model

// PageResult 分页列表的统一返回结构
type PageResult[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

func NewPage[T any](items []T, page, perPage int, total int64) *PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasMore: int64(page*perPage) < total,
	}
}
