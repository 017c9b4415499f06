package utils

// Paginate режет список на страницы фиксированного размера.
// Номер страницы нулевой; запрошенный номер зажимается в
// [0, totalPages-1], поэтому после удаления элементов запрос
// «слишком большой» страницы возвращает последнюю, а не ошибку.
// Для пустого списка totalPages = 1 («страница 1 из 1» всегда отображаема).
func Paginate[T any](items []T, page, pageSize int) (slice []T, effectivePage, totalPages int) {
	if pageSize <= 0 {
		pageSize = 1
	}

	totalPages = (len(items) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	effectivePage = page
	if effectivePage < 0 {
		effectivePage = 0
	}
	if effectivePage > totalPages-1 {
		effectivePage = totalPages - 1
	}

	start := effectivePage * pageSize
	if start >= len(items) {
		return []T{}, effectivePage, totalPages
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], effectivePage, totalPages
}
