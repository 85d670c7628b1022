// Package recommend содержит движок рекомендаций: детерминированный,
// объяснимый многофакторный скоринг кандидатов (мероприятий и клубов)
// для конкретного студента. Чистая бизнес-логика без внешних зависимостей.
package recommend

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORING PHILOSOPHY
//
// Философия рекомендаций: "Объяснимость важнее магии"
//
// Каждая рекомендация сопровождается списком причин, которые студент
// может прочитать и понять. Поэтому:
// 1. Веса факторов - явные константы, а не ML-модель
// 2. Порядок причин = порядок вклада факторов
// 3. Одинаковые входные данные всегда дают одинаковый результат
//
// НЕ используем:
// - Скрытую рандомизацию (ломает воспроизводимость)
// - Коллаборативную фильтрацию (нечего объяснить студенту)
// ══════════════════════════════════════════════════════════════════════════════

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNegativeLimit - отрицательный лимит результатов.
	ErrNegativeLimit = errors.New("recommend: limit cannot be negative")

	// ErrSubjectMissingID - у субъекта отсутствует идентификатор.
	ErrSubjectMissingID = errors.New("recommend: subject ID is required")

	// ErrSubjectMissingSkills - у субъекта не инициализировано множество навыков.
	ErrSubjectMissingSkills = errors.New("recommend: subject skill set is required")

	// ErrCandidateMissingID - у кандидата отсутствует идентификатор.
	ErrCandidateMissingID = errors.New("recommend: candidate ID is required")
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORING WEIGHTS
// Канонические веса факторов. Менять только осознанно: это продуктовое
// решение, меняющее порядок рекомендаций для всех студентов.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// WeightPerSkillMatch - вклад за каждый совпавший навык.
	WeightPerSkillMatch = 25.0

	// WeightClubAffiliation - бонус за мероприятие своего клуба.
	WeightClubAffiliation = 30.0

	// WeightTrending - бонус за популярное мероприятие.
	WeightTrending = 15.0

	// WeightPerView - вклад за каждый просмотр (непрерывный тай-брейкер).
	WeightPerView = 0.05
)

// Тексты причин рекомендации. Показываются студенту как есть.
const (
	ReasonSkillMatchPrefix = "Matches your skills: "
	ReasonClubAffiliation  = "Your club's event"
	ReasonTrending         = "Trending event"
	ReasonPopularFallback  = "Popular event"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOTS
// Неизменяемые снимки входных данных для одного прохода скоринга.
// ══════════════════════════════════════════════════════════════════════════════

// Subject - снимок профиля студента, для которого считаются рекомендации.
type Subject struct {
	// ID - идентификатор студента.
	ID string

	// SkillIDs - множество идентификаторов навыков студента.
	SkillIDs map[string]struct{}

	// ClubIDs - множество идентификаторов клубов студента.
	ClubIDs map[string]struct{}

	// ClaimedIDs - идентификаторы уже занятых позиций: мероприятия,
	// на которые студент записан, и клубы, в которых он состоит.
	// Занятые позиции никогда не рекомендуются повторно.
	ClaimedIDs map[string]struct{}
}

// Validate проверяет минимальную корректность снимка субъекта.
func (s Subject) Validate() error {
	if s.ID == "" {
		return ErrSubjectMissingID
	}
	if s.SkillIDs == nil {
		return ErrSubjectMissingSkills
	}
	return nil
}

// HasClaimed возвращает true, если позиция уже занята субъектом.
func (s Subject) HasClaimed(candidateID string) bool {
	if s.ClaimedIDs == nil {
		return false
	}
	_, ok := s.ClaimedIDs[candidateID]
	return ok
}

// CandidateKind определяет вид рекомендуемой позиции.
type CandidateKind string

const (
	// KindEvent - мероприятие.
	KindEvent CandidateKind = "event"
	// KindClub - клуб.
	KindClub CandidateKind = "club"
)

// IsValid проверяет корректность вида.
func (k CandidateKind) IsValid() bool {
	return k == KindEvent || k == KindClub
}

// CandidateSkill - навык кандидата с человекочитаемым названием для причин.
type CandidateSkill struct {
	// ID - идентификатор навыка.
	ID string

	// Name - название навыка (попадает в текст причины).
	Name string
}

// Candidate - снимок рекомендуемой позиции.
type Candidate struct {
	// ID - идентификатор мероприятия или клуба.
	ID string

	// Kind - вид позиции.
	Kind CandidateKind

	// Title - название (для сериализации результата).
	Title string

	// ClubID - клуб-организатор (для мероприятий).
	ClubID string

	// ClubName - название клуба-организатора.
	ClubName string

	// Skills - навыки, релевантные позиции.
	Skills []CandidateSkill

	// Trending - флаг популярной позиции.
	Trending bool

	// Popularity - метрика популярности: просмотры мероприятия
	// или количество участников клуба.
	Popularity int

	// IsFuture - мероприятие ещё не началось. Для клубов всегда true.
	IsFuture bool

	// IsFull - все места заняты. Для клубов всегда false.
	IsFull bool
}

// Validate проверяет минимальную корректность снимка кандидата.
func (c Candidate) Validate() error {
	if c.ID == "" {
		return ErrCandidateMissingID
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORE BREAKDOWN
// Результат скоринга одного кандидата с объяснением.
// ══════════════════════════════════════════════════════════════════════════════

// ScoreBreakdown содержит оценку кандидата и причины в порядке вклада факторов.
type ScoreBreakdown struct {
	// CandidateID - идентификатор кандидата.
	CandidateID string `json:"item_id"`

	// Kind - вид кандидата.
	Kind CandidateKind `json:"item_type"`

	// Title - название кандидата.
	Title string `json:"title"`

	// ClubName - название клуба-организатора.
	ClubName string `json:"club_name,omitempty"`

	// Score - итоговая оценка с полной точностью. Для отображения
	// используется DisplayScore(); сравнение всегда по полной точности.
	Score float64 `json:"score"`

	// Reasons - человекочитаемые причины в порядке вклада факторов.
	Reasons []string `json:"reasons"`
}

// DisplayScore возвращает оценку, округлённую до 2 знаков.
// Только для отображения: внутренние сравнения используют Score.
func (b ScoreBreakdown) DisplayScore() float64 {
	return math.Round(b.Score*100) / 100
}

// ══════════════════════════════════════════════════════════════════════════════
// RANK
// Основной контракт движка: чистая функция над снимками входных данных.
// ══════════════════════════════════════════════════════════════════════════════

// Rank вычисляет ранжированный список рекомендаций для субъекта.
//
// Гарантии:
//   - кандидаты из ClaimedIDs субъекта никогда не попадают в результат
//     (защитная проверка поверх Filter - на случай устаревшего снимка);
//   - оценка неотрицательна и монотонно растёт с добавлением факторов;
//   - результат отсортирован по убыванию оценки; при равных оценках
//     сохраняется исходный порядок кандидатов (стабильная сортировка);
//   - пустой пул кандидатов - не ошибка, возвращается пустой список.
func Rank(subject Subject, candidates []Candidate, limit int) ([]ScoreBreakdown, error) {
	if limit < 0 {
		return nil, ErrNegativeLimit
	}
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	ranked := make([]ScoreBreakdown, 0, len(candidates))
	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			return nil, err
		}
		if subject.HasClaimed(candidate.ID) {
			continue
		}

		breakdown := scoreCandidate(subject, candidate)
		if breakdown.Score > 0 || len(breakdown.Reasons) > 0 {
			ranked = append(ranked, breakdown)
		}
	}

	// Стабильная сортировка: при равных оценках первый увиденный побеждает.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// scoreCandidate считает оценку одного кандидата.
// Порядок факторов фиксирован: навыки, клуб, тренд, популярность.
func scoreCandidate(subject Subject, candidate Candidate) ScoreBreakdown {
	breakdown := ScoreBreakdown{
		CandidateID: candidate.ID,
		Kind:        candidate.Kind,
		Title:       candidate.Title,
		ClubName:    candidate.ClubName,
	}

	// Фактор 1: пересечение навыков.
	// Навык без названия учитывается в оценке, но не в тексте причины.
	var matches int
	var named []string
	for _, skill := range candidate.Skills {
		if _, ok := subject.SkillIDs[skill.ID]; ok {
			matches++
			if skill.Name != "" {
				named = append(named, skill.Name)
			}
		}
	}
	if matches > 0 {
		breakdown.Score += WeightPerSkillMatch * float64(matches)
		if len(named) > 0 {
			breakdown.Reasons = append(breakdown.Reasons,
				ReasonSkillMatchPrefix+strings.Join(named, ", "))
		}
	}

	// Фактор 2: мероприятие своего клуба.
	if candidate.Kind == KindEvent && candidate.ClubID != "" {
		if _, ok := subject.ClubIDs[candidate.ClubID]; ok {
			breakdown.Score += WeightClubAffiliation
			breakdown.Reasons = append(breakdown.Reasons, ReasonClubAffiliation)
		}
	}

	// Фактор 3: популярная позиция.
	if candidate.Trending {
		breakdown.Score += WeightTrending
		breakdown.Reasons = append(breakdown.Reasons, ReasonTrending)
	}

	// Фактор 4: непрерывный тай-брейкер по просмотрам.
	// Никогда не попадает в причины отдельной строкой.
	breakdown.Score += WeightPerView * float64(candidate.Popularity)

	// Кандидат без совпавших факторов, но с положительной популярностью
	// остаётся в выдаче с причиной по умолчанию.
	if len(breakdown.Reasons) == 0 && breakdown.Score > 0 {
		breakdown.Reasons = []string{ReasonPopularFallback}
	}

	return breakdown
}
