package album

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/Spok95/telegram-homework-bot/internal/topics"
)

// Target — куда пишется альбом: снимок активного сценария пользователя,
// сделанный ОДИН раз на первом фото серии. Последующие фото назначение
// изменить уже не могут, даже если пользователь успел начать новый сценарий.
type Target struct {
	Kind       models.Kind
	Section    string
	TopicID    string
	TopicTitle string
}

// DefaultTarget — назначение для альбома без активного сценария.
func DefaultTarget() Target {
	return Target{
		Kind:       models.KindDZ,
		Section:    topics.DefaultSection,
		TopicID:    topics.NoTopicID,
		TopicTitle: topics.AlbumTopic,
	}
}

// Finalized — собранный альбом, готовый стать одной сдачей.
type Finalized struct {
	UserID  int64
	Target  Target
	FileIDs []string // в порядке поступления
	Caption string
}

// Summary — подпись альбома или автотекст.
func (f Finalized) Summary() string {
	if f.Caption != "" {
		return topics.Truncate(f.Caption)
	}
	return fmt.Sprintf("Альбом из %d фото", len(f.FileIDs))
}

// FinalizeFunc вызывается ровно один раз на буфер. Ошибки обрабатывает сама
// (логирование, уведомления) — буфер к этому моменту уже удалён.
type FinalizeFunc func(ctx context.Context, fin Finalized)

type buffer struct {
	userID     int64
	target     Target
	fileIDs    []string
	caption    string // последняя непустая подпись выигрывает
	lastUpdate time.Time
}

// Aggregator — склейка серий фото (media group) в одну сдачу.
type Aggregator struct {
	mu       sync.Mutex
	buffers  map[string]*buffer // ключ user|group
	quiet    time.Duration
	finalize FinalizeFunc
	now      func() time.Time
}

func New(quiet time.Duration, fn FinalizeFunc) *Aggregator {
	return &Aggregator{
		buffers:  make(map[string]*buffer),
		quiet:    quiet,
		finalize: fn,
		now:      time.Now,
	}
}

func key(userID int64, groupID string) string {
	return fmt.Sprintf("%d|%s", userID, groupID)
}

// AddItem — фото в серию. snapshot вызывается только при создании буфера:
// назначение фиксируется по состоянию на момент первого фото. Фото,
// опоздавшее к финализации своей серии, открывает новый буфер — это даст
// вторую сдачу, но никогда не испортит уже финализируемую.
func (a *Aggregator) AddItem(userID int64, groupID, fileID, caption string, snapshot func() Target) {
	a.mu.Lock()
	defer a.mu.Unlock()

	k := key(userID, groupID)
	b, ok := a.buffers[k]
	if !ok {
		b = &buffer{userID: userID, target: snapshot()}
		a.buffers[k] = b
	}
	b.fileIDs = append(b.fileIDs, fileID)
	if caption != "" {
		b.caption = caption
	}
	b.lastUpdate = a.now()
}

// Len — количество открытых буферов (для тестов и метрик).
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffers)
}

// Sweep — финализировать все буферы, молчавшие дольше тихого интервала.
// Буфер атомарно изымается из карты ДО обработки: финализация каждого
// буфера выполняется не более одного раза, независимо от её исхода.
func (a *Aggregator) Sweep(ctx context.Context) error {
	now := a.now()

	a.mu.Lock()
	var ready []*buffer
	for k, b := range a.buffers {
		if now.Sub(b.lastUpdate) > a.quiet {
			ready = append(ready, b)
			delete(a.buffers, k)
		}
	}
	a.mu.Unlock()

	for _, b := range ready {
		a.finalize(ctx, Finalized{
			UserID:  b.userID,
			Target:  b.target,
			FileIDs: b.fileIDs,
			Caption: b.caption,
		})
	}
	return nil
}
