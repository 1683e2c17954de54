package apitest

import "github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"

// Paginate slices items the way the API does. Pages are 1-based; a page
// past the end is empty but still reports the totals.
func Paginate[T any](items []T, page, pageSize int) clients.Page[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	data := make([]T, end-start)
	copy(data, items[start:end])

	return clients.Page[T]{
		Data: data,
		Pagination: clients.Pagination{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	}
}
