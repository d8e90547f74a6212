package utils

import "ytgify.com/pkg/constants"

// NormalizePage 页码限制在 [1, MaxPage], 每页条数限制在 [1, MaxLimit]
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > constants.MaxPage {
		page = constants.MaxPage
	}
	if perPage < 1 {
		perPage = constants.DefaultLimit
	}
	if perPage > constants.MaxLimit {
		perPage = constants.MaxLimit
	}
	return page, perPage
}

func Offset(page, perPage int) int {
	page, perPage = NormalizePage(page, perPage)
	return (page - 1) * perPage
}
