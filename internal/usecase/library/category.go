package library

import (
	"fmt"
	"strings"
)

// CategoryConfig is the per-category capability used by the search-driven
// seeder: how many images each family should hold and how to phrase image
// search queries for it.
type CategoryConfig interface {
	Name() string
	TargetPerFamily() int
	BuildSearchQueries(brand, family string) []string
}

type templateCategory struct {
	name      string
	target    int
	templates []string
}

func (c templateCategory) Name() string         { return c.name }
func (c templateCategory) TargetPerFamily() int { return c.target }

func (c templateCategory) BuildSearchQueries(brand, family string) []string {
	brand = strings.TrimSpace(brand)
	family = strings.TrimSpace(family)

	queries := make([]string, 0, len(c.templates))
	for _, tpl := range c.templates {
		queries = append(queries, fmt.Sprintf(tpl, brand, family))
	}
	return queries
}

// NewTemplateCategory builds a CategoryConfig from printf-style query
// templates taking brand and family name.
func NewTemplateCategory(name string, target int, templates ...string) CategoryConfig {
	return templateCategory{name: name, target: target, templates: templates}
}

// BuiltinCategories returns the configured categories. The query phrasing
// per category steers image search toward product shots instead of generic
// brand results.
func BuiltinCategories(defaultTarget int) []CategoryConfig {
	return []CategoryConfig{
		NewTemplateCategory("watches", defaultTarget,
			"%s %s watch",
			"%s %s wristwatch",
			"%s %s timepiece",
		),
		NewTemplateCategory("sneakers", defaultTarget,
			"%s %s sneakers",
			"%s %s shoes product photo",
		),
		NewTemplateCategory("handbags", defaultTarget,
			"%s %s handbag",
			"%s %s bag authentic",
		),
	}
}

// CategoryByName finds a builtin category config.
func CategoryByName(name string, defaultTarget int) (CategoryConfig, bool) {
	for _, cat := range BuiltinCategories(defaultTarget) {
		if cat.Name() == strings.ToLower(strings.TrimSpace(name)) {
			return cat, true
		}
	}
	return nil, false
}
