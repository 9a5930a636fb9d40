// Package rules классифицирует имена файлов по ролям изображений
// (OVERVIEW, FRONT, REAR) на основе пользовательских правил.
//
// Роли проверяются в фиксированном порядке приоритета: совпадение с
// ролью более высокого приоритета исключает проверку остальных ролей.
// Паттерны ролей строит та же функция, которая используется при
// классификации, поэтому превью и экспортированная конфигурация дают
// одинаковый результат.
package rules

import (
	"fmt"
	"sort"
	"strings"
)

// ImageRole — роль изображения внутри группы.
type ImageRole string

const (
	RoleOverview ImageRole = "OVERVIEW"
	RoleFront    ImageRole = "FRONT"
	RoleRear     ImageRole = "REAR"
)

// precedence: меньше число — роль проверяется раньше.
// Порядок задаётся таблицей, а не порядком объявления констант.
var precedence = map[ImageRole]int{
	RoleOverview: 1,
	RoleFront:    2,
	RoleRear:     3,
}

// Precedence возвращает приоритет роли (0 для неизвестной роли).
func Precedence(r ImageRole) int {
	return precedence[r]
}

// Roles возвращает все роли в порядке приоритета.
func Roles() []ImageRole {
	out := make([]ImageRole, 0, len(precedence))
	for r := range precedence {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return precedence[out[i]] < precedence[out[j]]
	})
	return out
}

// Valid сообщает, что роль входит в закрытый набор.
func (r ImageRole) Valid() bool {
	_, ok := precedence[r]
	return ok
}

// ParseRole разбирает имя роли без учёта регистра.
func ParseRole(s string) (ImageRole, error) {
	r := ImageRole(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown image role %q", s)
	}
	return r, nil
}
