package corpus

import (
	"fmt"
	"strings"

	"github.com/stardex-io/stardex/internal/domain"
)

type experienceDTO struct {
	ID          recordID `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Situation   string   `json:"situation"`
	Task        string   `json:"task"`
	Action      string   `json:"action"`
	Result      string   `json:"result"`
	Tags        []string `json:"tags"`
}

// LoadExperiences loads work-experience records. The description field is
// the primary narrative; the STAR fields back the full formatted text that
// is returned with retrieval results.
func LoadExperiences(path string) ([]domain.Record, error) {
	var items []experienceDTO
	if err := readJSON(path, &items); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(items))
	for i, item := range items {
		if item.ID.String() == "" {
			return nil, fmt.Errorf("experience %d: missing id: %w", i, domain.ErrCorpusInvalid)
		}

		records = append(records, domain.Record{
			ID:       "exp_" + item.ID.String(),
			Title:    item.Title,
			GroupKey: item.Company,
			Fields: []domain.NarrativeField{
				{Name: "description", Text: item.Description},
				{Name: "situation", Text: item.Situation},
				{Name: "task", Text: item.Task},
				{Name: "action", Text: item.Action},
				{Name: "result", Text: item.Result},
			},
			Tags:     item.Tags,
			FullText: starFormat(item),
		})
	}
	return records, nil
}

// starFormat renders the full STAR representation of an experience.
func starFormat(e experienceDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "EXPERIENCE %s - %s:\n", e.ID.String(), e.Title)
	fmt.Fprintf(&b, "Situation: \"%s\"\n\n", e.Situation)
	fmt.Fprintf(&b, "Task: \"%s\"\n\n", e.Task)
	fmt.Fprintf(&b, "Action: \"%s\"\n\n", e.Action)
	fmt.Fprintf(&b, "Result: \"%s\"\n", e.Result)
	return b.String()
}
