package redis

import (
	"strings"
	"testing"

	"github.com/stardex-io/stardex/internal/db"
)

// testIndexDef mirrors the index the chunk repository creates.
var testIndexDef = db.IndexDefinition{
	Name:     "stardex:experience_store:idx",
	Prefixes: []string{"stardex:experience_store:"},
	Fields: []db.IndexField{
		{Name: "group_key", Type: db.IndexFieldTag},
		{
			Name:           "__vector",
			Alias:          "vector",
			Type:           db.IndexFieldVector,
			VectorAlgo:     db.VectorHNSW,
			VectorDim:      768,
			VectorDistance: db.DistanceCosine,
		},
	},
}

func TestVectorBytesRoundTrip(t *testing.T) {
	in := []float32{0.1, -2.5, 3.75, 0, 1e-8}

	out := bytesToVector(vectorToBytes(in))
	if len(out) != len(in) {
		t.Fatalf("length mismatch: got %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("element %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestBytesToVector_InvalidLength(t *testing.T) {
	if v := bytesToVector("abc"); v != nil {
		t.Errorf("expected nil for non-multiple-of-4 input, got %v", v)
	}
}

func TestDistanceToSimilarity(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{0.25, 0.75},
		{1, 0},
		{1.5, 0}, // clamped, distance can exceed 1 for opposing vectors
	}

	for _, tc := range cases {
		if got := distanceToSimilarity(tc.distance); got != tc.want {
			t.Errorf("distanceToSimilarity(%v) = %v, want %v", tc.distance, got, tc.want)
		}
	}
}

func TestBuildCreateArgs(t *testing.T) {
	def := &testIndexDef
	args, err := buildCreateArgs(def)
	if err != nil {
		t.Fatalf("buildCreateArgs: %v", err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"stardex:experience_store:idx ON HASH",
		"PREFIX 1 stardex:experience_store:",
		"SCHEMA",
		"group_key TAG",
		"__vector AS vector VECTOR HNSW",
		"DIM 768",
		"DISTANCE_METRIC COSINE",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q:\n%s", want, joined)
		}
	}
}

func TestBuildKNNArgs(t *testing.T) {
	q := &db.KNNQuery{
		IndexName:    "stardex:experience_store:idx",
		Vector:       []float32{0.1, 0.2},
		K:            6,
		ReturnFields: []string{"record_id", "title"},
	}

	joined := strings.Join(buildKNNArgs(q), " ")
	for _, want := range []string{
		"*=>[KNN 6 @vector $BLOB]",
		"RETURN 3 record_id title __vector_score",
		"SORTBY __vector_score",
		"LIMIT 0 6",
		"DIALECT 2",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q:\n%s", want, joined)
		}
	}

	// The query attribute must match the schema alias, not the raw hash
	// field, or FT.SEARCH rejects the property under DIALECT 2.
	if strings.Contains(joined, "@__vector") {
		t.Errorf("query references the raw field instead of the alias:\n%s", joined)
	}
}

func TestBuildCreateArgs_Invalid(t *testing.T) {
	def := testIndexDef
	def.Name = ""
	if _, err := buildCreateArgs(&def); err == nil {
		t.Fatal("expected error for empty index name")
	}
}
