// Package pattern синтезирует регулярные выражения конфигурации:
// групповой паттерн с единственной захватывающей группой и паттерны ролей.
package pattern

import (
	"strings"

	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

// Configuration — итоговая конфигурация паттернов для обработки изображений.
//
// Downstream-пайплайн требует ровно одну захватывающую группу в GroupPattern
// и применяет паттерны ролей с семантикой «содержит совпадение».
type Configuration struct {
	GroupPattern    string                 `json:"group_pattern"`
	FrontPattern    string                 `json:"front_pattern"`
	RearPattern     string                 `json:"rear_pattern"`
	OverviewPattern string                 `json:"overview_pattern"`
	RoleRules       []rules.RoleRule       `json:"role_rules"`
	Tokens          []tokens.FilenameToken `json:"tokens"`
	GroupIDToken    *tokens.FilenameToken  `json:"group_id_token,omitempty"`
}

// IsValid: групповой паттерн не пуст и хотя бы один паттерн роли не пуст.
func (c *Configuration) IsValid() bool {
	if c == nil || strings.TrimSpace(c.GroupPattern) == "" {
		return false
	}
	for _, role := range rules.Roles() {
		if strings.TrimSpace(c.RolePattern(role)) != "" {
			return true
		}
	}
	return false
}

// RolePattern возвращает паттерн указанной роли.
func (c *Configuration) RolePattern(role rules.ImageRole) string {
	switch role {
	case rules.RoleFront:
		return c.FrontPattern
	case rules.RoleRear:
		return c.RearPattern
	case rules.RoleOverview:
		return c.OverviewPattern
	}
	return ""
}

// SetRolePattern устанавливает паттерн роли.
func (c *Configuration) SetRolePattern(role rules.ImageRole, p string) {
	switch role {
	case rules.RoleFront:
		c.FrontPattern = p
	case rules.RoleRear:
		c.RearPattern = p
	case rules.RoleOverview:
		c.OverviewPattern = p
	}
}

// Clone возвращает глубокую копию конфигурации.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := *c
	out.RoleRules = append([]rules.RoleRule(nil), c.RoleRules...)
	out.Tokens = append([]tokens.FilenameToken(nil), c.Tokens...)
	if c.GroupIDToken != nil {
		tok := *c.GroupIDToken
		out.GroupIDToken = &tok
	}
	return &out
}
