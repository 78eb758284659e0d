package models

import "fmt"

// User — ученик (или админ), известный боту. Создаётся при первом
// обращении, идентичность обновляется при каждом новом сообщении.
type User struct {
	ID        int64
	Username  string
	FirstName string
}

// DisplayName — @username, иначе имя, иначе user_<id>.
func (u User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return fmt.Sprintf("user_%d", u.ID)
}

// MentionHTML — кликабельное упоминание для parse_mode=HTML.
func (u User) MentionHTML() string {
	return fmt.Sprintf("<a href='tg://user?id=%d'>%s</a>", u.ID, u.DisplayName())
}
