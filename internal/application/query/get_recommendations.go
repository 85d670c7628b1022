package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/recommend"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
	"github.com/campus-hub/clubevent-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RECOMMENDATIONS QUERY
// Ключевой запрос системы: детерминированный многофакторный скоринг
// мероприятий и клубов для конкретного студента. Весь порядок результата
// определяется движком recommend; здесь только сборка снимков и кэш.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultRecommendationLimit - лимит результатов по умолчанию.
const DefaultRecommendationLimit = 5

// GetRecommendationsQuery содержит параметры запроса рекомендаций.
type GetRecommendationsQuery struct {
	// StudentID - ID студента.
	StudentID string

	// Limit - максимальное количество результатов (по умолчанию 5).
	Limit int

	// BypassCache - не читать кэш (после изменения профиля).
	BypassCache bool
}

// Validate проверяет корректность параметров.
func (q *GetRecommendationsQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("query", "GetRecommendations", shared.ErrInvalidID, "student_id is required")
	}
	if q.Limit < 0 {
		return shared.NewDomainError("query", "GetRecommendations", shared.ErrNegativeValue, "limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = DefaultRecommendationLimit
	}
	return nil
}

// RecommendationItemDTO - одна рекомендация в выдаче.
type RecommendationItemDTO struct {
	// ItemID - идентификатор мероприятия или клуба.
	ItemID string `json:"item_id"`

	// ItemType - "event" или "club".
	ItemType string `json:"item_type"`

	// Title - название.
	Title string `json:"title"`

	// ClubName - клуб-организатор (пустой для самих клубов).
	ClubName string `json:"club_name,omitempty"`

	// Score - оценка, округлённая до 2 знаков.
	Score float64 `json:"score"`

	// Reasons - причины рекомендации в порядке вклада факторов.
	Reasons []string `json:"reasons"`
}

// GetRecommendationsResult содержит результат запроса.
type GetRecommendationsResult struct {
	// StudentID - ID студента.
	StudentID string `json:"student_id"`

	// StudentName - имя студента (для промптов агентов).
	StudentName string `json:"student_name"`

	// Items - ранжированный список рекомендаций.
	Items []RecommendationItemDTO `json:"items"`

	// TotalCandidates - размер пула кандидатов после фильтрации.
	TotalCandidates int `json:"total_candidates"`

	// FromCache - результат взят из кэша.
	FromCache bool `json:"-"`

	// GeneratedAt - время генерации.
	GeneratedAt time.Time `json:"generated_at"`
}

// ItemsJSON возвращает детерминированную JSON-сериализацию списка рекомендаций.
// Используется как полезная нагрузка промптов агентов: порядок элементов
// и полей стабилен между вызовами.
func (r *GetRecommendationsResult) ItemsJSON() (string, error) {
	data, err := json.Marshal(r.Items)
	if err != nil {
		return "", fmt.Errorf("marshal recommendations: %w", err)
	}
	return string(data), nil
}

// RecommendationCache кэширует готовые результаты запроса.
// Реализация - infrastructure/persistence/redis. Ошибки кэша не фатальны:
// обработчик деградирует до прямого вычисления.
type RecommendationCache interface {
	// Get возвращает закэшированный результат или (nil, nil) при промахе.
	Get(ctx context.Context, studentID string, limit int) (*GetRecommendationsResult, error)

	// Set сохраняет результат.
	Set(ctx context.Context, result *GetRecommendationsResult, limit int) error

	// Invalidate удаляет все записи студента (после изменения профиля).
	Invalidate(ctx context.Context, studentID string) error
}

// GetRecommendationsHandler обрабатывает запросы рекомендаций.
type GetRecommendationsHandler struct {
	studentRepo      catalog.StudentRepository
	clubRepo         catalog.ClubRepository
	eventRepo        catalog.EventRepository
	registrationRepo catalog.RegistrationRepository
	skillRepo        catalog.SkillRepository
	cache            RecommendationCache
	now              func() time.Time
	log              *logger.Logger
}

// NewGetRecommendationsHandler создаёт новый обработчик.
// cache может быть nil - тогда кэширование отключено.
func NewGetRecommendationsHandler(
	studentRepo catalog.StudentRepository,
	clubRepo catalog.ClubRepository,
	eventRepo catalog.EventRepository,
	registrationRepo catalog.RegistrationRepository,
	skillRepo catalog.SkillRepository,
	cache RecommendationCache,
	log *logger.Logger,
) *GetRecommendationsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetRecommendationsHandler{
		studentRepo:      studentRepo,
		clubRepo:         clubRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		skillRepo:        skillRepo,
		cache:            cache,
		now:              time.Now,
		log:              log,
	}
}

// Handle вычисляет рекомендации для студента.
//
// Порядок: студент -> кэш -> занятые позиции -> пул кандидатов ->
// Filter -> Rank -> DTO. Несуществующий студент - ошибка ДО любых
// вычислений: shared.ErrStudentNotFound.
func (h *GetRecommendationsHandler) Handle(ctx context.Context, query GetRecommendationsQuery) (*GetRecommendationsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	student, err := h.studentRepo.GetByID(ctx, query.StudentID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil && !query.BypassCache {
		cached, cacheErr := h.cache.Get(ctx, query.StudentID, query.Limit)
		if cacheErr != nil {
			h.log.Warn("recommendation cache read failed",
				logger.StudentID(query.StudentID), logger.Err(cacheErr))
		} else if cached != nil {
			cached.FromCache = true
			return cached, nil
		}
	}

	claimed, err := h.registrationRepo.ClaimedItemsOf(ctx, student.ID)
	if err != nil {
		return nil, shared.WrapError("query", "GetRecommendations", shared.ErrExternalService, "load claimed items", err)
	}

	candidates, err := h.buildCandidatePool(ctx, student)
	if err != nil {
		return nil, err
	}

	subject := buildSubject(student, claimed)
	pool := recommend.Filter(subject, candidates)

	ranked, err := recommend.Rank(subject, pool, query.Limit)
	if err != nil {
		return nil, shared.WrapError("query", "GetRecommendations", shared.ErrInvalidInput, "rank candidates", err)
	}

	result := &GetRecommendationsResult{
		StudentID:       student.ID,
		StudentName:     student.Name,
		Items:           toItemDTOs(ranked),
		TotalCandidates: len(pool),
		GeneratedAt:     h.now(),
	}

	if h.cache != nil {
		if cacheErr := h.cache.Set(ctx, result, query.Limit); cacheErr != nil {
			h.log.Warn("recommendation cache write failed",
				logger.StudentID(query.StudentID), logger.Err(cacheErr))
		}
	}

	h.log.Debug("recommendations computed",
		logger.StudentID(student.ID),
		logger.Count(len(result.Items)),
		logger.Int("pool_size", len(pool)),
	)

	return result, nil
}

// buildCandidatePool собирает пул кандидатов: будущие мероприятия и все клубы.
func (h *GetRecommendationsHandler) buildCandidatePool(ctx context.Context, student *catalog.Student) ([]recommend.Candidate, error) {
	now := h.now()

	events, err := h.eventRepo.ListUpcoming(ctx, catalog.EventFilter{From: now})
	if err != nil {
		return nil, shared.WrapError("query", "GetRecommendations", shared.ErrExternalService, "list upcoming events", err)
	}

	clubs, err := h.clubRepo.List(ctx)
	if err != nil {
		return nil, shared.WrapError("query", "GetRecommendations", shared.ErrExternalService, "list clubs", err)
	}

	clubNames := make(map[string]string, len(clubs))
	for _, club := range clubs {
		clubNames[club.ID] = club.Name
	}

	skillNames, err := h.skillNamesFor(ctx, events)
	if err != nil {
		return nil, err
	}

	candidates := make([]recommend.Candidate, 0, len(events)+len(clubs))
	for _, event := range events {
		candidates = append(candidates, buildEventCandidate(event, clubNames[event.ClubID], skillNames, now))
	}
	for _, club := range clubs {
		candidates = append(candidates, buildClubCandidate(club))
	}

	return candidates, nil
}

// skillNamesFor загружает названия всех навыков, встречающихся в пуле мероприятий.
func (h *GetRecommendationsHandler) skillNamesFor(ctx context.Context, events []*catalog.Event) (map[string]string, error) {
	seen := map[string]struct{}{}
	ids := make([]string, 0)
	for _, event := range events {
		for _, id := range event.RequiredSkillIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	skills, err := h.skillRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, shared.WrapError("query", "GetRecommendations", shared.ErrExternalService, "load skills", err)
	}

	names := make(map[string]string, len(skills))
	for _, skill := range skills {
		names[skill.ID] = skill.Name
	}
	return names, nil
}

func toItemDTOs(ranked []recommend.ScoreBreakdown) []RecommendationItemDTO {
	items := make([]RecommendationItemDTO, 0, len(ranked))
	for _, b := range ranked {
		items = append(items, RecommendationItemDTO{
			ItemID:   b.CandidateID,
			ItemType: string(b.Kind),
			Title:    b.Title,
			ClubName: b.ClubName,
			Score:    b.DisplayScore(),
			Reasons:  b.Reasons,
		})
	}
	return items
}
