package tokens

import (
	"regexp"
	"sort"
	"strings"
)

// Стороны камеры, на которые отображаются синонимы.
const (
	SideOverview = "overview"
	SideFront    = "front"
	SideRear     = "rear"
)

var cameraSynonyms = map[string][]string{
	SideOverview: {"overview", "ov", "ovr", "ovw", "scene", "full"},
	SideFront:    {"front", "f", "fr", "forward"},
	SideRear:     {"rear", "r", "rr", "back", "behind"},
}

var imageExtensions = []string{"jpg", "jpeg", "png", "bmp", "tiff", "tif", "gif", "webp"}

// dateShape — допустимая форма даты и соответствующий фрагмент регулярки.
type dateShape struct {
	re       *regexp.Regexp
	fragment string
}

var dateShapes = []dateShape{
	{re: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), fragment: `\d{4}-\d{2}-\d{2}`},
	{re: regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`), fragment: `\d{2}-\d{2}-\d{4}`},
	{re: regexp.MustCompile(`^\d{8}$`), fragment: `\d{8}`},
}

// CameraSide возвращает сторону камеры для синонима (без учёта регистра).
func CameraSide(value string) (string, bool) {
	v := strings.ToLower(value)
	for side, syns := range cameraSynonyms {
		for _, s := range syns {
			if s == v {
				return side, true
			}
		}
	}
	return "", false
}

// CameraSynonyms возвращает все синонимы сторон, от длинных к коротким.
//
// Такой порядок нужен для альтернации в регулярке: более длинный вариант
// проверяется раньше своего префикса.
func CameraSynonyms() []string {
	var out []string
	for _, syns := range cameraSynonyms {
		out = append(out, syns...)
	}
	return longestFirst(out)
}

// SideSynonyms возвращает синонимы одной стороны.
func SideSynonyms(side string) []string {
	return append([]string(nil), cameraSynonyms[side]...)
}

// ImageExtensions возвращает допустимые расширения, от длинных к коротким.
func ImageExtensions() []string {
	return longestFirst(append([]string(nil), imageExtensions...))
}

// IsImageExtension проверяет расширение без учёта регистра (точка допускается).
func IsImageExtension(ext string) bool {
	e := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, x := range imageExtensions {
		if x == e {
			return true
		}
	}
	return false
}

// DateFragment возвращает фрагмент регулярки для значения, похожего на дату.
func DateFragment(value string) (string, bool) {
	for _, shape := range dateShapes {
		if shape.re.MatchString(value) {
			return shape.fragment, true
		}
	}
	return "", false
}

// IsDate проверяет, что значение совпадает с одной из форм даты.
func IsDate(value string) bool {
	_, ok := DateFragment(value)
	return ok
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func longestFirst(values []string) []string {
	sort.SliceStable(values, func(i, j int) bool {
		if len(values[i]) != len(values[j]) {
			return len(values[i]) > len(values[j])
		}
		return values[i] < values[j]
	})
	return values
}
