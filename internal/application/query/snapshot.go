// Package query contains read operations (CQRS - Queries).
package query

import (
	"time"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/recommend"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT BUILDERS
// Перевод сущностей каталога в снимки движка рекомендаций. Движок работает
// только со снимками: он не знает о репозиториях и не ходит в хранилище.
// ══════════════════════════════════════════════════════════════════════════════

// buildSubject собирает снимок субъекта из сущности студента и множества
// занятых позиций (регистрации на мероприятия + членства в клубах).
func buildSubject(student *catalog.Student, claimed map[string]struct{}) recommend.Subject {
	if claimed == nil {
		claimed = map[string]struct{}{}
	}
	return recommend.Subject{
		ID:         student.ID,
		SkillIDs:   catalog.NewSkillSet(student.SkillIDs),
		ClubIDs:    catalog.NewSkillSet(student.ClubIDs),
		ClaimedIDs: claimed,
	}
}

// buildEventCandidate собирает снимок кандидата-мероприятия.
// skillNames - справочник ID навыка -> название; неизвестные навыки
// попадают в снимок с пустым названием и не участвуют в тексте причин.
func buildEventCandidate(event *catalog.Event, clubName string, skillNames map[string]string, now time.Time) recommend.Candidate {
	skills := make([]recommend.CandidateSkill, 0, len(event.RequiredSkillIDs))
	for _, id := range event.RequiredSkillIDs {
		skills = append(skills, recommend.CandidateSkill{ID: id, Name: skillNames[id]})
	}
	return recommend.Candidate{
		ID:         event.ID,
		Kind:       recommend.KindEvent,
		Title:      event.Title,
		ClubID:     event.ClubID,
		ClubName:   clubName,
		Skills:     skills,
		Trending:   event.IsTrending,
		Popularity: event.ViewCount,
		IsFuture:   !event.IsPast(now),
		IsFull:     event.IsFull(),
	}
}

// buildClubCandidate собирает снимок кандидата-клуба.
// Клубы не привязаны к навыкам и не бывают "переполненными":
// их ранжирует только популярность (количество участников).
func buildClubCandidate(club *catalog.Club) recommend.Candidate {
	return recommend.Candidate{
		ID:         club.ID,
		Kind:       recommend.KindClub,
		Title:      club.Name,
		ClubName:   club.Name,
		Popularity: club.MemberCount,
		IsFuture:   true,
		IsFull:     false,
	}
}
