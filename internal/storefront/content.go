package storefront

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Link is a labelled anchor
type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Stat is a hero figure such as "10K+ Happy Customers"
type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type Hero struct {
	Badge           string `yaml:"badge"`
	Title           string `yaml:"title"`
	Highlight       string `yaml:"highlight"`
	Subtitle        string `yaml:"subtitle"`
	PrimaryAction   string `yaml:"primary_action"`
	SecondaryAction string `yaml:"secondary_action"`
	Stats           []Stat `yaml:"stats"`
}

type Feature struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Category struct {
	Icon        string `yaml:"icon"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type ProductsSection struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Action   string `yaml:"action"`
}

type Testimonial struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Avatar string `yaml:"avatar"`
	Rating int    `yaml:"rating"`
	Text   string `yaml:"text"`
}

type CTA struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Action   string `yaml:"action"`
}

type FooterColumn struct {
	Title string `yaml:"title"`
	Links []Link `yaml:"links"`
}

type Contact struct {
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
}

type Footer struct {
	About     string         `yaml:"about"`
	Columns   []FooterColumn `yaml:"columns"`
	Contact   Contact        `yaml:"contact"`
	Copyright string         `yaml:"copyright"`
}

// Content is the static copy of every landing page section
type Content struct {
	Brand        string          `yaml:"brand"`
	Nav          []Link          `yaml:"nav"`
	Hero         Hero            `yaml:"hero"`
	Features     []Feature       `yaml:"features"`
	Categories   []Category      `yaml:"categories"`
	Products     ProductsSection `yaml:"products"`
	Testimonials []Testimonial   `yaml:"testimonials"`
	CTA          CTA             `yaml:"cta"`
	Footer       Footer          `yaml:"footer"`
}

// ParseContent decodes YAML page content. Unknown keys are rejected so a
// typo in an override file fails loudly instead of blanking a section.
func ParseContent(data []byte) (*Content, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Content
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("content is empty")
		}
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the fields the page cannot render without
func (c *Content) Validate() error {
	if c.Brand == "" {
		return errors.New("content: brand is required")
	}
	if c.Hero.Title == "" {
		return errors.New("content: hero.title is required")
	}
	if c.Products.Title == "" {
		return errors.New("content: products.title is required")
	}
	for i, t := range c.Testimonials {
		if t.Rating < 0 || t.Rating > 5 {
			return fmt.Errorf("content: testimonial %d rating must be between 0 and 5", i)
		}
	}
	return nil
}

// DefaultContent returns the built-in page content
func DefaultContent() *Content {
	c, err := ParseContent(defaultContent)
	if err != nil {
		panic(fmt.Sprintf("embedded content.yaml is invalid: %v", err))
	}
	return c
}

// ContentStore serves the current page content. When backed by a file, the
// file replaces the built-in content and is reloaded on change.
type ContentStore struct {
	current atomic.Pointer[Content]
	path    string
	logger  *slog.Logger
}

// NewContentStore loads path, or the built-in content when path is empty
func NewContentStore(path string, logger *slog.Logger) (*ContentStore, error) {
	s := &ContentStore{path: path, logger: logger}
	if path == "" {
		s.current.Store(DefaultContent())
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the current content
func (s *ContentStore) Get() *Content {
	return s.current.Load()
}

// Reload rereads the content file. On error the previous content stays.
func (s *ContentStore) Reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read content file: %w", err)
	}
	c, err := ParseContent(data)
	if err != nil {
		return err
	}
	s.current.Store(c)
	return nil
}

// reloadDebounce collapses the burst of events one save produces
const reloadDebounce = 200 * time.Millisecond

// Watch reloads the content file whenever it changes, until ctx is done.
// It returns immediately when the store has no file.
func (s *ContentStore) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files by rename, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch content dir: %w", err)
	}
	s.logger.Info("watching content file", "path", s.path)

	target := filepath.Clean(s.path)
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("content watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce.Reset(reloadDebounce)
			}

		case <-debounce.C:
			if err := s.Reload(); err != nil {
				s.logger.Error("content reload failed, keeping previous content", "path", s.path, "error", err)
				continue
			}
			s.logger.Info("content reloaded", "path", s.path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("content watcher error", "error", err)
		}
	}
}
