package recommend

// ══════════════════════════════════════════════════════════════════════════════
// DEDUP & ELIGIBILITY FILTER
// Убирает из пула кандидатов занятые и недоступные позиции до скоринга.
// Фильтр стабильный: порядок оставшихся кандидатов не меняется.
// ══════════════════════════════════════════════════════════════════════════════

// Filter возвращает кандидатов, пригодных для рекомендации субъекту.
//
// Исключаются:
//   - позиции из ClaimedIDs субъекта (уже записан / уже состоит);
//   - мероприятия без свободных мест (безлимитные не бывают полными);
//   - мероприятия, которые уже начались.
//
// Клубы правилам заполненности и времени не подчиняются: для них
// снимок всегда содержит IsFuture=true и IsFull=false.
func Filter(subject Subject, candidates []Candidate) []Candidate {
	eligible := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if subject.HasClaimed(candidate.ID) {
			continue
		}
		if candidate.IsFull {
			continue
		}
		if candidate.Kind == KindEvent && !candidate.IsFuture {
			continue
		}
		eligible = append(eligible, candidate)
	}
	return eligible
}
