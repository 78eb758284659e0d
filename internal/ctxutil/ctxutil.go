package ctxutil

import (
	"context"
	"time"
)

var DefaultDBTimeout = 5 * time.Second

// WithDBTimeout — стандартный таймаут для БД. Уже более короткий дедлайн
// родителя не удлиняем.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		remain := time.Until(dl)
		if remain < DefaultDBTimeout {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
