package source

// Registry статический набор источников
type Registry struct {
	sources []Descriptor
}

// NewRegistry копирует список, чтобы внешние изменения не влияли на реестр
func NewRegistry(sources []Descriptor) *Registry {
	cp := make([]Descriptor, len(sources))
	copy(cp, sources)
	return &Registry{sources: cp}
}

// Len количество источников
func (r *Registry) Len() int {
	return len(r.sources)
}

// ByLanguage источники с точным совпадением языка
func (r *Registry) ByLanguage(lang string) []Descriptor {
	var out []Descriptor
	for _, s := range r.sources {
		if s.Language == lang {
			out = append(out, s)
		}
	}
	return out
}

// ByCategory источники нужного языка, подходящие под категорию (см. MatchesCategory)
func (r *Registry) ByCategory(category, lang string) []Descriptor {
	var out []Descriptor
	for _, s := range r.sources {
		if s.Language == lang && s.MatchesCategory(category) {
			out = append(out, s)
		}
	}
	return out
}

// Lookup ищет источник по имени
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	for _, s := range r.sources {
		if s.Name == name {
			return s, true
		}
	}
	return Descriptor{}, false
}
