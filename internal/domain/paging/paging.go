// Пакет paging — вычисление окна номеров страниц, диапазона отображаемых
// записей и навигации по страницам. Все функции чистые.
package paging

// Token — элемент окна пагинации: номер страницы или многоточие.
type Token struct {
	// Page — номер страницы (0 для многоточия)
	Page int
	// Ellipsis — true, если элемент обозначает пропуск страниц
	Ellipsis bool
}

// IsEllipsis сообщает, является ли элемент многоточием.
func (t Token) IsEllipsis() bool { return t.Ellipsis }

// maxFullWindow — максимальное число страниц, показываемых без сокращения.
const maxFullWindow = 5

// Window возвращает последовательность номеров страниц с многоточиями.
// Результат содержит не более 7 элементов; при total > 5 в нём всегда
// есть первая и последняя страницы.
func Window(current, total int) []Token {
	if total <= 0 {
		return []Token{}
	}

	if total <= maxFullWindow {
		return pages(1, total)
	}

	ellipsis := Token{Ellipsis: true}

	switch {
	case current <= 3:
		out := pages(1, 5)
		return append(out, ellipsis, Token{Page: total})
	case current >= total-2:
		out := []Token{{Page: 1}, ellipsis}
		return append(out, pages(total-4, total)...)
	default:
		return []Token{
			{Page: 1},
			ellipsis,
			{Page: current - 1},
			{Page: current},
			{Page: current + 1},
			ellipsis,
			{Page: total},
		}
	}
}

// pages возвращает страницы from..to включительно.
func pages(from, to int) []Token {
	out := make([]Token, 0, to-from+3)
	for p := from; p <= to; p++ {
		out = append(out, Token{Page: p})
	}
	return out
}

// TotalPages возвращает ceil(items / perPage). perPage < 1 считается равным 1.
func TotalPages(items, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if items <= 0 {
		return 0
	}
	return (items + perPage - 1) / perPage
}

// Range возвращает номера первой и последней отображаемой записи (с 1).
// Для пустого списка — (0, 0).
func Range(current, perPage, totalItems int) (start, end int) {
	if totalItems <= 0 {
		return 0, 0
	}
	if perPage < 1 {
		perPage = 1
	}
	start = (current-1)*perPage + 1
	end = current * perPage
	if end > totalItems {
		end = totalItems
	}
	return start, end
}

// Normalize сбрасывает текущую страницу на 1, если она вышла за пределы
// [1, totalPages] (например, после сужения отфильтрованного набора).
func Normalize(current, totalPages int) int {
	if current < 1 || current > totalPages {
		return 1
	}
	return current
}

// Bounds возвращает индексы [lo, hi) среза для страницы current.
func Bounds(current, perPage, totalItems int) (lo, hi int) {
	start, end := Range(current, perPage, totalItems)
	if start == 0 || start > totalItems {
		return 0, 0
	}
	return start - 1, end
}
