package topics

import (
	"fmt"
	"strings"

	"github.com/Spok95/telegram-homework-bot/internal/models"
)

// Topic — тема внутри раздела. DZAllowed=false означает, что по теме
// принимаются только конспекты.
type Topic struct {
	ID        string
	Title     string
	DZAllowed bool
}

type Section struct {
	Name   string
	Topics []Topic
}

const (
	// DefaultSection используется для сдач без выбора раздела
	// (fallback по ключевому слову и альбомы без активного сценария).
	DefaultSection = "Без раздела"
	NoTopicID      = "none"
	AlbumTopic     = "Альбом"
)

var sections = []Section{
	{
		Name: "Основы Питона",
		Topics: []Topic{
			{ID: "op1", Title: "Вводный урок", DZAllowed: true},
			{ID: "op2", Title: "Условия и целочисленные операторы", DZAllowed: false},
			{ID: "op3", Title: "Цикл for", DZAllowed: true},
			{ID: "op4", Title: "Цикл while", DZAllowed: true},
			{ID: "op5", Title: "Практика: цикл for и while", DZAllowed: false},
			{ID: "op6", Title: "Строки и срезы", DZAllowed: false},
			{ID: "op7", Title: "Списки и генераторы", DZAllowed: true},
		},
	},
	egeSection(),
}

func egeSection() Section {
	s := Section{Name: "ЕГЭ 1-27"}
	for n := 1; n <= 27; n++ {
		s.Topics = append(s.Topics, Topic{
			ID:        fmt.Sprintf("ege%d", n),
			Title:     fmt.Sprintf("Задание %d", n),
			DZAllowed: true,
		})
	}
	return s
}

func Sections() []Section { return sections }

func SectionNames() []string {
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.Name)
	}
	return names
}

func SectionByName(name string) (Section, bool) {
	for _, s := range sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

func Find(section, topicID string) (Topic, bool) {
	s, ok := SectionByName(section)
	if !ok {
		return Topic{}, false
	}
	for _, t := range s.Topics {
		if t.ID == topicID {
			return t, true
		}
	}
	return Topic{}, false
}

// Classify — узкий fallback-классификатор свободного текста: если сообщение
// начинается с «дз» или «конспект» (без учёта регистра), возвращает тип
// сдачи. Сценарии меню он никогда не перебивает — вызывающий обязан сперва
// проверить активный PendingIntake и ожидание причины пропуска.
func Classify(text string) (models.Kind, bool) {
	low := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(low, "дз"):
		return models.KindDZ, true
	case strings.HasPrefix(low, "конспект"):
		return models.KindConspect, true
	}
	return "", false
}

// FallbackTitle — заголовок темы для сдачи без выбора: первая строка,
// не длиннее 50 символов.
func FallbackTitle(text string) string {
	line := strings.SplitN(strings.TrimSpace(text), "\n", 2)[0]
	r := []rune(line)
	if len(r) > 50 {
		r = r[:50]
	}
	return string(r)
}

// Truncate — превью содержимого для content_summary, ≤300 символов.
func Truncate(text string) string {
	r := []rune(text)
	if len(r) <= 300 {
		return text
	}
	return string(r[:297]) + "..."
}
