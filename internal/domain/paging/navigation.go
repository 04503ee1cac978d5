package paging

// Navigator — навигация по страницам с ограничением [1, Total].
// При Total == 0 все переходы недоступны, текущая страница — 1.
type Navigator struct {
	Current int
	Total   int
}

// clamp ограничивает страницу диапазоном [1, Total].
func (n Navigator) clamp(page int) int {
	if n.Total < 1 || page < 1 {
		return 1
	}
	if page > n.Total {
		return n.Total
	}
	return page
}

// First возвращает первую страницу.
func (n Navigator) First() int { return 1 }

// Prev возвращает предыдущую страницу (на первой — саму себя).
func (n Navigator) Prev() int { return n.clamp(n.Current - 1) }

// Next возвращает следующую страницу (на последней — саму себя).
func (n Navigator) Next() int { return n.clamp(n.Current + 1) }

// Last возвращает последнюю страницу.
func (n Navigator) Last() int { return n.clamp(n.Total) }

// Jump возвращает страницу page, ограниченную допустимым диапазоном.
func (n Navigator) Jump(page int) int { return n.clamp(page) }

// HasPrev сообщает, доступны ли переходы «первая» и «предыдущая».
func (n Navigator) HasPrev() bool { return n.Total > 0 && n.Current > 1 }

// HasNext сообщает, доступны ли переходы «следующая» и «последняя».
func (n Navigator) HasNext() bool { return n.Total > 0 && n.Current < n.Total }
