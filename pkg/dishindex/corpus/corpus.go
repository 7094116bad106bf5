// Package corpus loads the channel/video corpus and flattens it into
// per-recipe title records for classification.
package corpus

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/net/html"
)

// RecipeTitleRecord is one recipe title found in a video. A single video
// may contribute zero or more records.
type RecipeTitleRecord struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// Recipe is a recipe entry nested under a video.
type Recipe struct {
	Title string `json:"title"`
}

// Video is one video entry within a channel.
type Video struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Recipes []Recipe `json:"recipes"`
}

// Channel groups the videos of one creator.
type Channel struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Videos []Video `json:"videos"`
}

// Corpus is the top-level input document.
type Corpus struct {
	Channels []Channel `json:"channels"`
}

// Load reads a corpus file. Gzip-compressed and plain JSON are both
// accepted; compression is detected from the magic bytes.
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a corpus from r, transparently unwrapping gzip.
func Read(r io.Reader) (*Corpus, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("corpus: read: %w", err)
	}

	var src io.Reader = br
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("corpus: gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	var c Corpus
	if err := json.NewDecoder(src).Decode(&c); err != nil {
		return nil, fmt.Errorf("corpus: decode: %w", err)
	}
	return &c, nil
}

// Flatten emits one record per (video, recipe title) pair, in corpus
// order, skipping recipes whose title is empty after cleanup.
func (c *Corpus) Flatten() []RecipeTitleRecord {
	var records []RecipeTitleRecord
	for _, ch := range c.Channels {
		for _, v := range ch.Videos {
			for _, r := range v.Recipes {
				title := CleanTitle(r.Title)
				if title == "" {
					continue
				}
				records = append(records, RecipeTitleRecord{
					VideoID: v.ID,
					Title:   title,
				})
			}
		}
	}
	return records
}

// CleanTitle strips any markup creators left in a title and collapses
// runs of whitespace to single spaces.
func CleanTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		s = stripHTML(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

func stripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to the raw string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
