package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Labels are the candidate label sets scored against a project description.
type Labels struct {
	Technologies        []string `yaml:"technologies" json:"technologies"`
	Complexity          []string `yaml:"complexity" json:"complexity"`
	Expertise           []string `yaml:"expertise" json:"expertise"`
	TechnologyThreshold float64  `yaml:"technologyThreshold" json:"technology_threshold"`
	MaxTechnologies     int      `yaml:"maxTechnologies" json:"max_technologies"`
}

// DefaultLabels returns the built-in label sets used when no labels file exists.
func DefaultLabels() *Labels {
	return &Labels{
		Technologies: []string{
			"React", "Next.js", "Vue", "Angular", "Node.js", "Express", "Python", "Django",
			"Flask", "Go", "Java", "Spring Boot", "Flutter", "React Native", "Swift", "Kotlin",
			"MongoDB", "PostgreSQL", "MySQL", "Firebase", "AWS", "Docker", "Kubernetes",
			"TensorFlow", "PyTorch", "Solidity", "Unity",
		},
		Complexity: []string{"beginner", "intermediate", "advanced"},
		Expertise: []string{
			"frontend development", "backend development", "full stack development",
			"mobile development", "machine learning", "data engineering", "devops",
			"blockchain", "game development", "ui/ux design",
		},
		TechnologyThreshold: 0.3,
		MaxTechnologies:     5,
	}
}

// Validate checks that every label set is usable for classification.
func (l *Labels) Validate() error {
	if len(l.Technologies) == 0 {
		return errors.New("technologies label set is empty")
	}
	if len(l.Complexity) == 0 {
		return errors.New("complexity label set is empty")
	}
	if len(l.Expertise) == 0 {
		return errors.New("expertise label set is empty")
	}
	if l.TechnologyThreshold < 0 || l.TechnologyThreshold > 1 {
		return fmt.Errorf("technologyThreshold must be within [0,1], got %v", l.TechnologyThreshold)
	}
	return nil
}

// LoadLabels reads label sets from a YAML file. A missing file yields the defaults;
// fields left out of the file keep their default values.
func LoadLabels(path string) (*Labels, error) {
	labels := DefaultLabels()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return labels, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}

	if err := yaml.Unmarshal(data, labels); err != nil {
		return nil, fmt.Errorf("failed to parse labels YAML: %w", err)
	}
	if labels.MaxTechnologies <= 0 {
		labels.MaxTechnologies = DefaultLabels().MaxTechnologies
	}
	if err := labels.Validate(); err != nil {
		return nil, err
	}

	return labels, nil
}

// LabelStore holds the current label sets and swaps them when the file changes.
type LabelStore struct {
	path    string
	mu      sync.RWMutex
	labels  *Labels
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLabelStore loads the labels file once. Call Watch to enable hot-reload.
func NewLabelStore(path string) (*LabelStore, error) {
	labels, err := LoadLabels(path)
	if err != nil {
		return nil, err
	}
	return &LabelStore{path: path, labels: labels}, nil
}

// Get returns the current label sets. The returned value must not be mutated.
func (s *LabelStore) Get() *Labels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels
}

// Reload re-reads the labels file. On error the previous labels stay active.
func (s *LabelStore) Reload() error {
	labels, err := LoadLabels(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.labels = labels
	s.mu.Unlock()
	return nil
}

// Watch starts watching the directory of the labels file and reloads on change.
func (s *LabelStore) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(s.path)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to get absolute path for %s: %w", s.path, err)
	}

	// Watching the directory survives editors that replace the file on save
	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	go s.loop(filepath.Base(absPath))

	log.Printf("👁️  Watching %s for label changes (hot-reload enabled)", s.path)
	return nil
}

func (s *LabelStore) loop(filename string) {
	defer close(s.done)

	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := s.Reload(); err != nil {
						log.Printf("⚠️  [LABELS] Reload failed, keeping previous labels: %v", err)
						return
					}
					log.Printf("🔄 [LABELS] Reloaded label sets from %s", s.path)
				})
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  [LABELS] Watcher error: %v", err)
		}
	}
}

// Close stops the watcher if one is running.
func (s *LabelStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	<-s.done
	return err
}
