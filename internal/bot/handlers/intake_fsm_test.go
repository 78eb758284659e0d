package handlers

import (
	"testing"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/Spok95/telegram-homework-bot/internal/topics"
)

func putIntake(chatID int64, st *IntakeState) {
	intakeMu.Lock()
	intakes[chatID] = st
	intakeMu.Unlock()
}

func TestClaimIntake(t *testing.T) {
	const chatID int64 = 100

	t.Run("нет состояния", func(t *testing.T) {
		ClearIntake(chatID)
		if claimIntake(chatID) != nil {
			t.Fatal("claim на пустом состоянии")
		}
	})

	t.Run("незавершённый сценарий не отдаётся", func(t *testing.T) {
		putIntake(chatID, &IntakeState{Kind: models.KindDZ, StartedAt: time.Now()})
		if claimIntake(chatID) != nil {
			t.Fatal("claim отдал сценарий без раздела и темы")
		}
		if getIntake(chatID) == nil {
			t.Fatal("неудачный claim не должен сбрасывать состояние")
		}
		ClearIntake(chatID)
	})

	t.Run("claim атомарно изымает", func(t *testing.T) {
		topic := topics.Topic{ID: "ege5", Title: "Задание 5", DZAllowed: true}
		putIntake(chatID, &IntakeState{
			Kind:    models.KindDZ,
			Section: "ЕГЭ 1-27",
			Topic:   &topic,
		})
		st := claimIntake(chatID)
		if st == nil || st.Topic.ID != "ege5" {
			t.Fatalf("claim: %+v", st)
		}
		if claimIntake(chatID) != nil {
			t.Fatal("повторный claim должен вернуть nil")
		}
		if getIntake(chatID) != nil {
			t.Fatal("состояние осталось после claim")
		}
	})
}

func TestSetIntakeSection(t *testing.T) {
	const chatID int64 = 110

	t.Run("без сценария", func(t *testing.T) {
		ClearIntake(chatID)
		if got := setIntakeSection(chatID, "ЕГЭ 1-27"); got != sectionNoIntake {
			t.Fatalf("ожидали sectionNoIntake, получили %v", got)
		}
	})

	t.Run("неизвестный раздел не трогает состояние", func(t *testing.T) {
		topic := topics.Topic{ID: "ege7", Title: "Задание 7", DZAllowed: true}
		putIntake(chatID, &IntakeState{Kind: models.KindDZ, Section: "ЕГЭ 1-27", Topic: &topic})
		if got := setIntakeSection(chatID, "Несуществующий раздел"); got != sectionUnknown {
			t.Fatalf("ожидали sectionUnknown, получили %v", got)
		}
		st := getIntake(chatID)
		if st == nil || st.Section != "ЕГЭ 1-27" {
			t.Fatalf("раздел не должен меняться: %+v", st)
		}
		if st.Topic == nil || st.Topic.ID != "ege7" {
			t.Fatalf("выбранная тема не должна сбрасываться: %+v", st.Topic)
		}
		ClearIntake(chatID)
	})

	t.Run("смена раздела сбрасывает тему", func(t *testing.T) {
		topic := topics.Topic{ID: "ege7", Title: "Задание 7", DZAllowed: true}
		putIntake(chatID, &IntakeState{Kind: models.KindDZ, Section: "ЕГЭ 1-27", Topic: &topic})
		if got := setIntakeSection(chatID, "Основы Питона"); got != sectionSet {
			t.Fatalf("ожидали sectionSet, получили %v", got)
		}
		st := getIntake(chatID)
		if st == nil || st.Section != "Основы Питона" || st.Topic != nil {
			t.Fatalf("после смены раздела: %+v", st)
		}
		ClearIntake(chatID)
	})
}

func TestSnapshotTarget(t *testing.T) {
	const chatID int64 = 200
	ClearIntake(chatID)

	t.Run("без сценария", func(t *testing.T) {
		got := SnapshotTarget(chatID)
		if got.Section != topics.DefaultSection || got.TopicID != topics.NoTopicID || got.TopicTitle != topics.AlbumTopic {
			t.Fatalf("цель по умолчанию: %+v", got)
		}
	})

	t.Run("сценарий без темы", func(t *testing.T) {
		putIntake(chatID, &IntakeState{Kind: models.KindConspect, Section: "Основы Питона"})
		got := SnapshotTarget(chatID)
		if got.Kind != models.KindConspect || got.Section != "Основы Питона" || got.TopicID != topics.NoTopicID {
			t.Fatalf("частичный сценарий: %+v", got)
		}
		ClearIntake(chatID)
	})

	t.Run("полный сценарий", func(t *testing.T) {
		topic := topics.Topic{ID: "op3", Title: "Цикл for", DZAllowed: true}
		putIntake(chatID, &IntakeState{Kind: models.KindDZ, Section: "Основы Питона", Topic: &topic})
		got := SnapshotTarget(chatID)
		if got.TopicID != "op3" || got.TopicTitle != "Цикл for" {
			t.Fatalf("полный сценарий: %+v", got)
		}
		// снимок не трогает состояние
		if getIntake(chatID) == nil {
			t.Fatal("SnapshotTarget сбросил сценарий")
		}
		ClearIntake(chatID)
	})
}
