package tokens

import "path/filepath"

// Пороги детекторов.
const (
	// ConstantShare — доля выборки, при которой значение считается постоянным
	// (PREFIX / SUFFIX).
	ConstantShare = 0.8

	// claimShare — доля совпадений, при которой позиция закрепляется за
	// EXTENSION / DATE / CAMERA_SIDE и не участвует в выборе GROUP_ID.
	claimShare = 0.5
)

// row — токены одного имени в процессе анализа.
type row struct {
	name   string
	tokens []FilenameToken
	extIdx int // индекс токена-расширения или -1

	best []candidate
}

type candidate struct {
	typ  TokenType
	conf float64
}

func newRow(name string, toks []FilenameToken) row {
	r := row{
		name:   name,
		tokens: make([]FilenameToken, len(toks)),
		extIdx: -1,
		best:   make([]candidate, len(toks)),
	}
	for i, t := range toks {
		t.SuggestedType = TypeUnknown
		t.Confidence = 0
		r.tokens[i] = t
		r.best[i] = candidate{typ: TypeUnknown}
	}

	last := len(toks) - 1
	ext := filepath.Ext(name)
	if last >= 0 && ext != "" && toks[last].Value == ext[1:] && IsImageExtension(ext) {
		r.extIdx = last
	}
	return r
}

// offer предлагает тип для токена; побеждает большая confidence,
// при равенстве — более конкретный тип.
func (r *row) offer(i int, typ TokenType, conf float64) {
	conf = clamp(conf)
	cur := r.best[i]
	if conf > cur.conf || (conf == cur.conf && moreSpecific(typ, cur.typ)) {
		r.best[i] = candidate{typ: typ, conf: conf}
	}
}

// slot — токен одной строки на сравниваемой позиции.
type slot struct {
	row *row
	idx int
}

func (s slot) value() string {
	return s.row.tokens[s.idx].Value
}

// positionStats — статистика значений на одной позиции.
type positionStats struct {
	slots      []slot
	distinct   int
	modal      string
	modalShare float64
	claimed    bool
}

func statsFor(slots []slot) positionStats {
	st := positionStats{slots: slots}
	if len(slots) == 0 {
		return st
	}
	freq := make(map[string]int, len(slots))
	best := 0
	for _, s := range slots {
		v := s.value()
		freq[v]++
		if freq[v] > best {
			best = freq[v]
			st.modal = v
		}
	}
	st.distinct = len(freq)
	st.modalShare = float64(best) / float64(len(slots))
	return st
}

// detect запускает все детекторы над выборкой и проставляет типы токенов.
func detect(rows []row) {
	n := len(rows)
	if n == 0 {
		return
	}

	detectExtensions(rows)

	maxLen := 0
	for i := range rows {
		if len(rows[i].tokens) > maxLen {
			maxLen = len(rows[i].tokens)
		}
	}

	positions := make([]positionStats, maxLen)
	for p := 0; p < maxLen; p++ {
		var slots []slot
		for i := range rows {
			r := &rows[i]
			if p < len(r.tokens) && p != r.extIdx {
				slots = append(slots, slot{row: r, idx: p})
			}
		}
		positions[p] = statsFor(slots)
		if len(slots) == 0 {
			positions[p].claimed = true
			continue
		}
		camera := detectByValue(slots, TypeCameraSide, func(v string) bool {
			_, ok := CameraSide(v)
			return ok
		})
		date := detectByValue(slots, TypeDate, IsDate)
		positions[p].claimed = camera >= claimShare || date >= claimShare
	}

	groupPos := detectGroupID(positions, n)
	for p := range positions {
		if p != groupPos && !positions[p].claimed {
			detectIndex(positions[p])
		}
	}
	if maxLen > 0 {
		detectConstant(positions[0], TypePrefix)
	}
	detectSuffix(rows)

	for i := range rows {
		r := &rows[i]
		for j := range r.tokens {
			r.tokens[j].SuggestedType = r.best[j].typ
			r.tokens[j].Confidence = r.best[j].conf
		}
	}
}

// detectExtensions: confidence = доля выборки с распознанным расширением.
func detectExtensions(rows []row) {
	recognized := 0
	for i := range rows {
		if rows[i].extIdx >= 0 {
			recognized++
		}
	}
	conf := float64(recognized) / float64(len(rows))
	for i := range rows {
		if rows[i].extIdx >= 0 {
			rows[i].offer(rows[i].extIdx, TypeExtension, conf)
		}
	}
}

// detectByValue помечает токены, прошедшие проверку, с confidence равной
// доле совпадений на позиции. Возвращает эту долю.
func detectByValue(slots []slot, typ TokenType, match func(string) bool) float64 {
	matched := 0
	for _, s := range slots {
		if match(s.value()) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	ratio := float64(matched) / float64(len(slots))
	for _, s := range slots {
		if match(s.value()) {
			s.row.offer(s.idx, typ, ratio)
		}
	}
	return ratio
}

// detectGroupID выбирает позицию с наибольшей долей уникальных значений
// (distinct / размер выборки). При равенстве побеждает более ранняя позиция.
// Для выборки из двух и более файлов постоянные позиции не рассматриваются.
func detectGroupID(positions []positionStats, n int) int {
	bestPos := -1
	bestRatio := 0.0
	for p, st := range positions {
		if st.claimed || len(st.slots) == 0 {
			continue
		}
		if n >= 2 && st.distinct < 2 {
			continue
		}
		ratio := float64(st.distinct) / float64(n)
		if ratio > bestRatio {
			bestRatio = ratio
			bestPos = p
		}
	}
	if bestPos < 0 {
		return -1
	}
	for _, s := range positions[bestPos].slots {
		s.row.offer(s.idx, TypeGroupID, bestRatio)
	}
	return bestPos
}

// detectIndex: числовые токены с меняющимся значением,
// confidence = distinct числовых значений / токенов на позиции.
func detectIndex(st positionStats) {
	digits := make(map[string]struct{})
	for _, s := range st.slots {
		if isDigits(s.value()) {
			digits[s.value()] = struct{}{}
		}
	}
	if len(digits) < 2 {
		return
	}
	conf := float64(len(digits)) / float64(len(st.slots))
	for _, s := range st.slots {
		if isDigits(s.value()) {
			s.row.offer(s.idx, TypeIndex, conf)
		}
	}
}

// detectConstant помечает модальное значение позиции, если оно занимает
// не меньше ConstantShare выборки.
func detectConstant(st positionStats, typ TokenType) {
	if len(st.slots) == 0 || st.modalShare < ConstantShare {
		return
	}
	for _, s := range st.slots {
		if s.value() == st.modal {
			s.row.offer(s.idx, typ, st.modalShare)
		}
	}
}

// detectSuffix смотрит на сегмент перед расширением.
func detectSuffix(rows []row) {
	var slots []slot
	for i := range rows {
		r := &rows[i]
		if r.extIdx >= 1 {
			slots = append(slots, slot{row: r, idx: r.extIdx - 1})
		}
	}
	detectConstant(statsFor(slots), TypeSuffix)
}
