package catalog

// ══════════════════════════════════════════════════════════════════════════════
// SKILL
// ══════════════════════════════════════════════════════════════════════════════

// SkillCategory определяет категорию навыка.
type SkillCategory string

const (
	// SkillTechnical - технический навык (Python, SQL, Docker...).
	SkillTechnical SkillCategory = "technical"
	// SkillSoft - мягкий навык (Leadership, Teamwork...).
	SkillSoft SkillCategory = "soft_skill"
	// SkillLanguage - языковой навык (English, French...).
	SkillLanguage SkillCategory = "language"
)

// IsValid проверяет, что категория корректна.
func (c SkillCategory) IsValid() bool {
	switch c {
	case SkillTechnical, SkillSoft, SkillLanguage:
		return true
	default:
		return false
	}
}

// Skill представляет навык из справочника кампуса.
type Skill struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// Name - название навыка (уникальное).
	Name string

	// Category - категория навыка.
	Category SkillCategory
}

// Validate проверяет инварианты навыка.
func (s *Skill) Validate() error {
	if s.ID == "" {
		return ErrMissingID
	}
	if s.Name == "" {
		return ErrMissingName
	}
	return nil
}

// SkillSet - множество идентификаторов навыков с быстрым пересечением.
type SkillSet map[string]struct{}

// NewSkillSet создаёт множество из списка идентификаторов.
func NewSkillSet(ids []string) SkillSet {
	set := make(SkillSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains возвращает true, если навык входит в множество.
func (s SkillSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Intersect возвращает идентификаторы, входящие в оба множества.
// Порядок результата соответствует порядку ids.
func (s SkillSet) Intersect(ids []string) []string {
	var common []string
	for _, id := range ids {
		if s.Contains(id) {
			common = append(common, id)
		}
	}
	return common
}
