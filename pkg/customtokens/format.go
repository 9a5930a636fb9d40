// Package customtokens хранит пользовательские токены в текстовом файле
// и следит за его изменениями.
//
// Формат файла: одна запись на строку,
//
//	name|description|mappedType|ex1,ex2,ex3
//
// Пустые строки и строки, начинающиеся с #, пропускаются.
package customtokens

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

const fieldSeparator = "|"

// LineError — ошибка разбора одной строки файла.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

var (
	// ErrFieldCount — в строке не четыре поля.
	ErrFieldCount = errors.New("expected 4 fields separated by '|'")
	// ErrEmptyName — пустое имя токена.
	ErrEmptyName = errors.New("token name is empty")
	// ErrNoExamples — нет ни одного примера.
	ErrNoExamples = errors.New("token has no examples")
	// ErrDuplicateName — имя уже встречалось.
	ErrDuplicateName = errors.New("duplicate token name")
)

// ParseLine разбирает одну запись.
func ParseLine(line string) (tokens.CustomToken, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != 4 {
		return tokens.CustomToken{}, ErrFieldCount
	}

	name := strings.TrimSpace(fields[0])
	if name == "" {
		return tokens.CustomToken{}, ErrEmptyName
	}
	mapped, err := tokens.ParseType(strings.TrimSpace(fields[2]))
	if err != nil {
		return tokens.CustomToken{}, err
	}

	var examples []string
	for _, ex := range strings.Split(fields[3], ",") {
		if ex = strings.TrimSpace(ex); ex != "" {
			examples = append(examples, ex)
		}
	}
	if len(examples) == 0 {
		return tokens.CustomToken{}, ErrNoExamples
	}

	return tokens.CustomToken{
		Name:        name,
		Description: strings.TrimSpace(fields[1]),
		MappedType:  mapped,
		Examples:    examples,
	}, nil
}

// Parse читает все записи. Некорректные строки не прерывают разбор:
// они возвращаются списком LineError, корректные записи — в результате.
func Parse(r io.Reader) ([]tokens.CustomToken, []*LineError, error) {
	var (
		out     []tokens.CustomToken
		invalid []*LineError
		seen    = make(map[string]struct{})
	)

	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		tok, err := ParseLine(text)
		if err == nil {
			key := strings.ToLower(tok.Name)
			if _, dup := seen[key]; dup {
				err = ErrDuplicateName
			} else {
				seen[key] = struct{}{}
			}
		}
		if err != nil {
			invalid = append(invalid, &LineError{Line: n, Text: text, Err: err})
			continue
		}
		out = append(out, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read custom tokens: %w", err)
	}
	return out, invalid, nil
}

// FormatLine сериализует токен в одну строку. Разделители внутри полей
// заменяются пробелами.
func FormatLine(t tokens.CustomToken) string {
	clean := func(s string) string {
		return strings.TrimSpace(strings.NewReplacer(fieldSeparator, " ", "\n", " ", ",", " ").Replace(s))
	}
	examples := make([]string, 0, len(t.Examples))
	for _, ex := range t.Examples {
		if ex = clean(ex); ex != "" {
			examples = append(examples, ex)
		}
	}
	return strings.Join([]string{
		clean(t.Name),
		strings.TrimSpace(strings.NewReplacer(fieldSeparator, " ", "\n", " ").Replace(t.Description)),
		string(t.MappedType),
		strings.Join(examples, ","),
	}, fieldSeparator)
}

// Format пишет заголовок и записи.
func Format(w io.Writer, toks []tokens.CustomToken) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# name|description|mappedType|ex1,ex2,ex3")
	for _, t := range toks {
		fmt.Fprintln(bw, FormatLine(t))
	}
	return bw.Flush()
}
