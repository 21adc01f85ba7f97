// Package docs embeds the markdown topics shown by `datepick docs`, the
// TUI help overlay and the web /help page.
package docs

import (
	"bufio"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Entry is a topic name paired with its first heading.
type Entry struct {
	Topic string
	Title string
}

// Normalize maps user input onto a topic key.
func Normalize(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

func Topics() []string {
	names, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return []string{}
	}
	topics := make([]string, 0, len(names))
	for _, name := range names {
		if topic := strings.TrimSuffix(path.Base(name), ".md"); topic != "" {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)
	return topics
}

// Get returns the markdown for topic; lookup ignores case and surrounding space.
func Get(topic string) (string, bool) {
	topic = Normalize(topic)
	if topic == "" {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", topic+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Title is the text of the topic's first level-one heading, or the topic
// name itself when the file has none.
func Title(topic string) string {
	src, ok := Get(topic)
	if !ok {
		return ""
	}
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return Normalize(topic)
}

// Entries lists every topic with its title, ordered by topic name.
func Entries() []Entry {
	topics := Topics()
	out := make([]Entry, 0, len(topics))
	for _, t := range topics {
		out = append(out, Entry{Topic: t, Title: Title(t)})
	}
	return out
}
