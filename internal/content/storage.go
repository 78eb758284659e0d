package content

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Storage — файловое хранилище конспектов: CONTENT_DIR/<user_id>/<раздел>_<тема>/.
type Storage struct {
	Root string
}

func New(root string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("content root %s: %w", root, err)
	}
	return &Storage{Root: root}, nil
}

func (s *Storage) topicDir(userID int64, section, topicID string) string {
	name := SlugifyFilename(section) + "_" + SlugifyFilename(topicID)
	return filepath.Join(s.Root, strconv.FormatInt(userID, 10), name)
}

// SaveText — текст конспекта в файл с меткой времени.
func (s *Storage) SaveText(userID int64, section, topicID, text string) (string, error) {
	dir := s.topicDir(userID, section, topicID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, time.Now().UTC().Format("20060102_150405")+".txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveFile — бинарное содержимое (фото) под безопасным именем.
func (s *Storage) SaveFile(userID int64, section, topicID, filename string, data []byte) (string, error) {
	dir := s.topicDir(userID, section, topicID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, SlugifyFilename(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// HasFiles — есть ли у пользователя сохранённые конспекты.
func (s *Storage) HasFiles(userID int64) bool {
	dir := filepath.Join(s.Root, strconv.FormatInt(userID, 10))
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// ZipUserDir — все файлы пользователя одним ZIP-архивом (в память).
func (s *Storage) ZipUserDir(userID int64) ([]byte, error) {
	dir := filepath.Join(s.Root, strconv.FormatInt(userID, 10))
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PurgeUser — удаляет каталог пользователя целиком.
func (s *Storage) PurgeUser(userID int64) error {
	return os.RemoveAll(filepath.Join(s.Root, strconv.FormatInt(userID, 10)))
}

// Reset — сносит и пересоздаёт корень хранилища.
func (s *Storage) Reset() error {
	if err := os.RemoveAll(s.Root); err != nil {
		return err
	}
	return os.MkdirAll(s.Root, 0o755)
}

// SlugifyFilename — безопасное имя файла: NFKD-нормализация, удаление
// диакритики, только разрешённые символы, ≤200 байт.
func SlugifyFilename(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if out, _, err := transform.String(t, name); err == nil {
		name = out
	}
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune("-_.() ", r):
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 200 {
		out = out[:200]
	}
	if out == "" {
		return "file"
	}
	return out
}
