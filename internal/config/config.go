package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BotToken    string
	DatabaseURL string
	AdminID     int64
	Location    *time.Location
	ContentDir  string // корень хранения конспектов
	ReportsDir  string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string

	// Ежедневные триггеры (локальное время из Location).
	ReminderAt  DayTime
	HistoryAt   DayTime
	ReportAt    DayTime
	InterviewAt DayTime

	SweepEvery time.Duration // период обхода альбомных буферов
	AlbumQuiet time.Duration // тишина, после которой альбом считается собранным

	// Считать ли сдачи, пришедшие после вечерней сверки, при её повторном
	// запуске за ту же дату.
	CountLate bool
}

// DayTime — время суток "HH:MM".
type DayTime struct {
	Hour   int
	Minute int
}

func (t DayTime) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	adminID, err := strconv.ParseInt(strings.TrimSpace(mustEnv("ADMIN_ID")), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_ID: %w", err)
	}

	cfg := &Config{
		BotToken:    mustEnv("BOT_TOKEN"),
		DatabaseURL: mustEnv("DATABASE_URL"),
		AdminID:     adminID,
		Location:    loc,
		ContentDir:  getenv("CONTENT_DIR", "conspects"),
		ReportsDir:  getenv("REPORTS_DIR", "reports"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "dev"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		SweepEvery:  getdur("SWEEP_EVERY", 2*time.Second),
		AlbumQuiet:  getdur("ALBUM_QUIET", 1500*time.Millisecond),
		CountLate:   getbool("COUNT_LATE", true),
	}

	times := []struct {
		key string
		def string
		dst *DayTime
	}{
		{"REMINDER_AT", "18:00", &cfg.ReminderAt},
		{"HISTORY_AT", "23:50", &cfg.HistoryAt},
		{"REPORT_AT", "23:55", &cfg.ReportAt},
		{"INTERVIEW_AT", "23:57", &cfg.InterviewAt},
	}
	for _, t := range times {
		dt, err := parseDayTime(getenv(t.key, t.def))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.key, err)
		}
		*t.dst = dt
	}
	return cfg, nil
}

// Today — календарный день в часовом поясе бота. Единая точка истины для
// submission_date, сверки и отчётов.
func (c *Config) Today() string {
	return time.Now().In(c.Location).Format("2006-01-02")
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getbool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func parseDayTime(s string) (DayTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return DayTime{}, fmt.Errorf("ожидали HH:MM, получили %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return DayTime{}, fmt.Errorf("bad hour %q", parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return DayTime{}, fmt.Errorf("bad minute %q", parts[1])
	}
	return DayTime{Hour: h, Minute: m}, nil
}
