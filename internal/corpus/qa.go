package corpus

import (
	"fmt"
	"strings"

	"github.com/stardex-io/stardex/internal/domain"
)

type qaDTO struct {
	ID       recordID `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

// LoadTechnicalQA loads technical question/answer records. The answer is
// the primary narrative; the question becomes the record title and the
// category becomes the grouping key.
func LoadTechnicalQA(path string) ([]domain.Record, error) {
	var items []qaDTO
	if err := readJSON(path, &items); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(items))
	for i, item := range items {
		if item.ID.String() == "" {
			return nil, fmt.Errorf("qa pair %d: missing id: %w", i, domain.ErrCorpusInvalid)
		}

		groupKey := item.Category
		if groupKey == "" {
			groupKey = "technical"
		}

		records = append(records, domain.Record{
			ID:       "qa_" + item.ID.String(),
			Title:    item.Question,
			GroupKey: groupKey,
			Fields: []domain.NarrativeField{
				{Name: "answer", Text: item.Answer},
				{Name: "question", Text: item.Question},
			},
			Tags:     item.Tags,
			FullText: searchableQA(item),
		})
	}
	return records, nil
}

// searchableQA renders the full searchable representation of a Q&A pair.
func searchableQA(q qaDTO) string {
	parts := []string{
		"Question: " + q.Question,
		"Answer: " + q.Answer,
	}
	if len(q.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(q.Tags, ", "))
	}
	if q.Category != "" {
		parts = append(parts, "Category: "+q.Category)
	}
	return strings.Join(parts, "\n\n")
}
