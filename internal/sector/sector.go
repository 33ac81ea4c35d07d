// Package sector maps tickers to sector tags and their news vocabulary.
package sector

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sector is one entry of the table.
type Sector struct {
	Tickers  []string `yaml:"tickers"`
	Keywords []string `yaml:"keywords"`
}

// Table is a sector tag -> members/keywords lookup. The zero value is empty
// and safe to query.
type Table struct {
	sectors map[string]Sector
	byCode  map[string][]string // cleaned ticker -> sector tags
}

// NewTable indexes sectors by member ticker.
func NewTable(sectors map[string]Sector) *Table {
	t := &Table{sectors: sectors, byCode: make(map[string][]string)}
	tags := make([]string, 0, len(sectors))
	for tag := range sectors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		for _, ticker := range sectors[tag].Tickers {
			code := normalize(ticker)
			t.byCode[code] = append(t.byCode[code], tag)
		}
	}
	return t
}

// Load reads a table from a YAML file of the form
//
//	sectors:
//	  MINING:
//	    tickers: [ANTM.JK, INCO.JK]
//	    keywords: [nikel, smelter]
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sector table: %w", err)
	}
	var doc struct {
		Sectors map[string]Sector `yaml:"sectors"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sector table: %w", err)
	}
	return NewTable(doc.Sectors), nil
}

// SectorOf returns the sector tags listing the ticker, sorted.
func (t *Table) SectorOf(ticker string) []string {
	if t == nil || t.byCode == nil {
		return nil
	}
	return t.byCode[normalize(ticker)]
}

// KeywordsFor returns the de-duplicated keywords of every sector listing the ticker.
func (t *Table) KeywordsFor(ticker string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range t.SectorOf(ticker) {
		for _, kw := range t.sectors[tag].Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}

// Tags lists every sector tag, sorted.
func (t *Table) Tags() []string {
	if t == nil {
		return nil
	}
	tags := make([]string, 0, len(t.sectors))
	for tag := range t.sectors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// normalize drops the exchange suffix and case.
func normalize(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if i := strings.IndexByte(ticker, '.'); i > 0 {
		ticker = ticker[:i]
	}
	return ticker
}
