package entities

import (
	"sort"

	"github.com/aarondl/null/v8"
)

// Material — строка расхода материала внутри одной работы.
// Собственного ключа у материала нет, адресация только по позиции
// в списке родителя, и позиция действительна лишь внутри одного
// цикла отрисовки меню.
type Material struct {
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	QtyPerUnit   float64 `json:"qty_per_work_unit"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// Work — расценка на работу. Code — единственный стабильный ключ
// работы между сохранениями каталога.
type Work struct {
	Name         string      `json:"name"`
	Code         string      `json:"code"`
	Unit         string      `json:"unit"`
	PricePerUnit float64     `json:"price_per_unit"`
	Group        null.String `json:"group"`
	Materials    []Material  `json:"materials"`
}

// Catalog — корневой агрегат прейскуранта. Works хранит порядок
// вставки; Groups — явный реестр групп, нужный для групп без работ.
type Catalog struct {
	Works  []Work   `json:"works"`
	Groups []string `json:"groups,omitempty"`
}

// AllGroups — единственная каноническая точка слияния явного реестра
// групп с группами, встречающимися в работах. Результат отсортирован
// лексикографически, чтобы индексы в меню были детерминированы.
func (c *Catalog) AllGroups() []string {
	seen := make(map[string]bool)
	var out []string

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, g := range c.Groups {
		add(g)
	}
	for _, w := range c.Works {
		if w.Group.Valid {
			add(w.Group.String)
		}
	}

	sort.Strings(out)
	return out
}

// FindWork ищет работу по коду. Возвращает указатель внутрь Works.
func (c *Catalog) FindWork(code string) *Work {
	for i := range c.Works {
		if c.Works[i].Code == code {
			return &c.Works[i]
		}
	}
	return nil
}

// HasCode сообщает, занят ли код другой работой (точное совпадение
// с учётом регистра).
func (c *Catalog) HasCode(code string) bool {
	return c.FindWork(code) != nil
}

// WorksInGroup возвращает работы группы в порядке их следования в
// каталоге. Пустое имя группы отбирает работы без группы.
func (c *Catalog) WorksInGroup(group string) []Work {
	var out []Work
	for _, w := range c.Works {
		switch {
		case group == "" && !w.Group.Valid:
			out = append(out, w)
		case w.Group.Valid && w.Group.String == group:
			out = append(out, w)
		}
	}
	return out
}

// RemoveWork удаляет работу по коду. Возвращает false, если работы
// с таким кодом уже нет.
func (c *Catalog) RemoveWork(code string) bool {
	for i := range c.Works {
		if c.Works[i].Code == code {
			c.Works = append(c.Works[:i], c.Works[i+1:]...)
			return true
		}
	}
	return false
}

// EnsureGroup регистрирует группу в явном реестре (автосоздание при
// использовании). Повторная регистрация — no-op.
func (c *Catalog) EnsureGroup(name string) {
	if name == "" {
		return
	}
	for _, g := range c.Groups {
		if g == name {
			return
		}
	}
	c.Groups = append(c.Groups, name)
}

// DeleteGroup удаляет группу каскадно: из реестра и вместе со всеми
// работами, ссылающимися на неё. Возвращает число удалённых работ и
// false, если группы не существовало.
func (c *Catalog) DeleteGroup(name string) (removed int, existed bool) {
	for _, g := range c.AllGroups() {
		if g == name {
			existed = true
			break
		}
	}
	if !existed {
		return 0, false
	}

	kept := c.Works[:0]
	for _, w := range c.Works {
		if w.Group.Valid && w.Group.String == name {
			removed++
			continue
		}
		kept = append(kept, w)
	}
	c.Works = kept

	for i, g := range c.Groups {
		if g == name {
			c.Groups = append(c.Groups[:i], c.Groups[i+1:]...)
			break
		}
	}
	return removed, true
}
