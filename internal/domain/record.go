package domain

// NarrativeField is one named free-text field of a source record, e.g.
// "description" or "answer". Order matters for fallback document synthesis.
type NarrativeField struct {
	Name string
	Text string
}

// Record is a source record loaded from a corpus file. Immutable once loaded;
// the retrieval core only reads it.
type Record struct {
	ID       string
	Title    string
	GroupKey string // company for experiences, category for Q&A, corpus kind for KB
	Fields   []NarrativeField
	Tags     []string
	FullText string // full formatted representation (STAR format or equivalent)
}

// Primary returns the primary narrative text, or "" if the record has none.
// The first field is the primary one by convention.
func (r Record) Primary() string {
	if len(r.Fields) == 0 {
		return ""
	}
	return r.Fields[0].Text
}
