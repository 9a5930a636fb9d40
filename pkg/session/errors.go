package session

import "fmt"

// Ошибки сессии.
//
// Rule 7: возвращаются вверх по стеку, никаких panic.

// ErrBlocked возвращается GenerateConfiguration, пока есть блокирующие ошибки.
//
// Пример использования:
//
//	cfg, err := s.GenerateConfiguration()
//	if errors.Is(err, session.ErrBlocked) {
//	    ui.showErrors(s.Validator().Errors())
//	}
var ErrBlocked = fmt.Errorf("configuration has blocking validation errors")

// ErrNoGroupID возвращается при сборке конфигурации в simple режиме без
// выбранного токена идентификатора группы.
var ErrNoGroupID = fmt.Errorf("group id token is not selected")

// ErrTokenNotFound возвращается когда выбранный токен не входит в текущую
// последовательность токенов.
var ErrTokenNotFound = fmt.Errorf("token not found in current sequence")

// ErrSampleNotFound возвращается когда имя не входит в выборку.
var ErrSampleNotFound = fmt.Errorf("filename is not part of the sample")

// ErrRuleIndex возвращается при обращении к несуществующему правилу.
var ErrRuleIndex = fmt.Errorf("rule index out of range")

// ErrClosed возвращается после закрытия сессии.
var ErrClosed = fmt.Errorf("session is closed")
