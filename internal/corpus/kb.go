package corpus

import (
	"fmt"

	"github.com/stardex-io/stardex/internal/domain"
)

type kbDTO struct {
	ID      recordID `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
}

// LoadGeneralKB loads free-form knowledge-base entries. Entries are not
// grouped by any source attribute, so they all share the "general" key.
func LoadGeneralKB(path string) ([]domain.Record, error) {
	var items []kbDTO
	if err := readJSON(path, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("knowledge base file %s is empty: %w", path, domain.ErrCorpusInvalid)
	}

	records := make([]domain.Record, 0, len(items))
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("kb entry %d: missing id: %w", i, domain.ErrCorpusInvalid)
		}

		records = append(records, domain.Record{
			ID:       item.ID.String(),
			Title:    item.Title,
			GroupKey: "general",
			Fields: []domain.NarrativeField{
				{Name: "content", Text: item.Content},
			},
			FullText: item.Content,
		})
	}
	return records, nil
}
