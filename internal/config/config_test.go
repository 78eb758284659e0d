package config

import (
	"testing"
	"time"
)

func TestParseDayTime(t *testing.T) {
	cases := []struct {
		in      string
		want    DayTime
		wantErr bool
	}{
		{"18:00", DayTime{18, 0}, false},
		{"23:57", DayTime{23, 57}, false},
		{"0:5", DayTime{0, 5}, false},
		{" 09:30 ", DayTime{9, 30}, false},
		{"24:00", DayTime{}, true},
		{"12:60", DayTime{}, true},
		{"1800", DayTime{}, true},
		{"", DayTime{}, true},
		{"aa:bb", DayTime{}, true},
	}
	for _, c := range cases {
		got, err := parseDayTime(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseDayTime(%q): ожидали ошибку", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDayTime(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseDayTime(%q) = %+v, ожидали %+v", c.in, got, c.want)
		}
	}
}

func TestDayTimeString(t *testing.T) {
	if s := (DayTime{9, 5}).String(); s != "09:05" {
		t.Fatalf("String() = %q", s)
	}
}

func TestGetdur(t *testing.T) {
	t.Setenv("TEST_DUR", "3s")
	if d := getdur("TEST_DUR", time.Second); d != 3*time.Second {
		t.Fatalf("getdur = %v", d)
	}
	t.Setenv("TEST_DUR", "мусор")
	if d := getdur("TEST_DUR", time.Second); d != time.Second {
		t.Fatalf("мусор должен давать default, получили %v", d)
	}
	t.Setenv("TEST_DUR", "-5s")
	if d := getdur("TEST_DUR", time.Second); d != time.Second {
		t.Fatalf("отрицательная длительность должна давать default, получили %v", d)
	}
}

func TestGetbool(t *testing.T) {
	t.Setenv("TEST_BOOL", "false")
	if getbool("TEST_BOOL", true) {
		t.Fatal("false из env проигнорирован")
	}
	t.Setenv("TEST_BOOL", "не-bool")
	if !getbool("TEST_BOOL", true) {
		t.Fatal("мусор должен давать default")
	}
}

func TestToday(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Skip("нет tzdata")
	}
	cfg := &Config{Location: loc}
	got := cfg.Today()
	want := time.Now().In(loc).Format("2006-01-02")
	if got != want {
		t.Fatalf("Today() = %q, ожидали %q", got, want)
	}
}
