// internal/resolver/collection/mapper.go
package collection

import (
	"sort"
	"strings"

	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/pkg/catalog"
)

// Whole-word matches outrank any accumulation of incidental substring hits
// ("sar" inside "disarm" must never beat "sar" as a standalone word).
const wholeWordBonus = 100

// Mapper scores dataset identifiers against query keywords. It is a pure
// function over the catalog keyword table: no network, no state, cheapest
// stage in the pipeline and therefore the first to run.
type Mapper struct {
	keywords []catalog.Keyword
	logger   logger.Logger
}

func NewMapper(cat *catalog.Catalog, log logger.Logger) *Mapper {
	return &Mapper{
		keywords: cat.Keywords,
		logger:   log.WithFields(map[string]interface{}{"stage": "collection-mapper"}),
	}
}

// Map returns dataset ids ordered by descending relevance score. Every
// keyword present as a substring contributes its length; a whole-word
// boundary match adds the bonus. Scores sum per dataset across keywords.
// Ties break by keyword-table order. An empty result is a valid answer,
// not an error.
func (m *Mapper) Map(queryText string) []string {
	query := strings.ToLower(queryText)

	scores := make(map[string]int)
	firstSeen := make(map[string]int)
	next := 0

	for _, kw := range m.keywords {
		term := strings.ToLower(kw.Term)
		if term == "" || !strings.Contains(query, term) {
			continue
		}

		score := len(term)
		if containsWholeWord(query, term) {
			score += wholeWordBonus
		}

		for _, ds := range kw.Datasets {
			if _, seen := firstSeen[ds]; !seen {
				firstSeen[ds] = next
				next++
			}
			scores[ds] += score
		}
	}

	ids := make([]string, 0, len(scores))
	for ds := range scores {
		ids = append(ids, ds)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return firstSeen[ids[i]] < firstSeen[ids[j]]
	})

	m.logger.Debug("mapped query to datasets", map[string]interface{}{
		"datasets": ids,
	})

	return ids
}

// containsWholeWord reports whether term occurs in s delimited by
// non-alphanumeric characters on both sides.
func containsWholeWord(s, term string) bool {
	for start := 0; start <= len(s)-len(term); {
		i := strings.Index(s[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)

		beforeOK := i == 0 || !isAlnum(s[i-1])
		afterOK := end == len(s) || !isAlnum(s[end])
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
	return false
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
