package catalog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/trackplan/internal/talk"
)

const lightningToken = "lightning"

var textLine = regexp.MustCompile(`^(.*\S)\s+(?:(\d+)\s*min|` + lightningToken + `)$`)

// ParseText reads the plain text format. Blank lines and lines starting with
// '#' are ignored.
func ParseText(r io.Reader) ([]talk.Talk, error) {
	var talks []talk.Talk
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tk, err := parseTextLine(line)
		if err != nil {
			return nil, fmt.Errorf("catalog: line %d: %w", lineNo, err)
		}
		talks = append(talks, tk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	return talks, nil
}

func parseTextLine(line string) (talk.Talk, error) {
	match := textLine.FindStringSubmatch(line)
	if match == nil {
		return talk.Talk{}, fmt.Errorf("missing duration in %q (want \"<title> <N>min\" or \"<title> %s\")", line, lightningToken)
	}
	minutes := talk.LightningMinutes
	if match[2] != "" {
		parsed, err := strconv.Atoi(match[2])
		if err != nil {
			return talk.Talk{}, fmt.Errorf("bad duration %q: %w", match[2], err)
		}
		minutes = parsed
	}
	return talk.New(match[1], minutes)
}

// Document is the YAML catalog layout.
type Document struct {
	Talks []Entry `yaml:"talks"`
}

// Entry is one YAML catalog item. Lightning talks may omit minutes.
type Entry struct {
	Title     string `yaml:"title"`
	Minutes   int    `yaml:"minutes,omitempty"`
	Lightning bool   `yaml:"lightning,omitempty"`
}

// ParseYAML decodes a YAML catalog. Unknown keys are rejected.
func ParseYAML(data []byte) ([]talk.Talk, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	talks := make([]talk.Talk, 0, len(doc.Talks))
	for i, entry := range doc.Talks {
		tk, err := entry.talk()
		if err != nil {
			return nil, fmt.Errorf("catalog: talks[%d]: %w", i, err)
		}
		talks = append(talks, tk)
	}
	return talks, nil
}

func (e Entry) talk() (talk.Talk, error) {
	minutes := e.Minutes
	if e.Lightning {
		if minutes != 0 && minutes != talk.LightningMinutes {
			return talk.Talk{}, fmt.Errorf("lightning talk %q cannot last %d minutes", e.Title, minutes)
		}
		minutes = talk.LightningMinutes
	}
	return talk.New(e.Title, minutes)
}

// MarshalYAML renders talks in the YAML catalog layout.
func MarshalYAML(talks []talk.Talk) ([]byte, error) {
	doc := Document{Talks: make([]Entry, len(talks))}
	for i, tk := range talks {
		if tk.IsLightning() {
			doc.Talks[i] = Entry{Title: tk.Title, Lightning: true}
			continue
		}
		doc.Talks[i] = Entry{Title: tk.Title, Minutes: tk.Minutes}
	}
	return yaml.Marshal(doc)
}

// Load reads a catalog file, choosing the format from its extension.
func Load(path string) ([]talk.Talk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseText(bytes.NewReader(data))
	}
}
