package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/hayasui/kotae/internal/models"
)

func TestWriteAskResult_JSON(t *testing.T) {
	response := &models.AskResponse{
		Query:   "what is bm25?",
		Answer:  "BM25 is a lexical ranking function.",
		Intent:  models.IntentKnowledgeQuery,
		Refused: false,
		Evidence: []models.Evidence{
			{
				Text:       "BM25 ranks documents by term frequency and rarity.",
				SourceFile: "retrieval.pdf",
				Page:       3,
				Score:      0.91,
			},
		},
		QueryTime: 42,
	}
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteAskResult(json): %v", err)
	}
	out := buf.String()
	if out == "" {
		t.Fatal("expected non-empty JSON output")
	}
	var decoded models.AskResponse
	if err := json.NewDecoder(strings.NewReader(out)).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if decoded.Query != response.Query || decoded.QueryTime != response.QueryTime {
		t.Errorf("decoded query=%q query_time=%d, want query=%q query_time=%d",
			decoded.Query, decoded.QueryTime, response.Query, response.QueryTime)
	}
	if len(decoded.Evidence) != 1 || decoded.Evidence[0].SourceFile != "retrieval.pdf" {
		t.Errorf("decoded evidence: want one fragment from retrieval.pdf, got %+v", decoded.Evidence)
	}
}

func TestWriteAskResult_JSON_noEvidence(t *testing.T) {
	response := &models.AskResponse{
		Query:  "hi",
		Answer: "Hello!",
		Intent: models.IntentGreeting,
	}
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteAskResult(json): %v", err)
	}
	var decoded models.AskResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("no-evidence response JSON decode: %v", err)
	}
	if len(decoded.Evidence) != 0 || decoded.Intent != models.IntentGreeting {
		t.Errorf("expected empty evidence and greeting intent, got %+v", decoded)
	}
}

func TestWriteAskResult_text(t *testing.T) {
	response := &models.AskResponse{
		Query:  "what is rrf?",
		Answer: "RRF fuses ranked lists by reciprocal rank.",
		Intent: models.IntentKnowledgeQuery,
		Evidence: []models.Evidence{
			{
				Text:       "Reciprocal rank fusion sums 1/(k+rank) per list.",
				SourceFile: "fusion.txt",
				Page:       1,
				Score:      0.85,
			},
		},
		QueryTime: 10,
	}
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, response, OutputText); err != nil {
		t.Fatalf("WriteAskResult(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"RRF fuses", "Evidence (1 fragments, 10ms)", "fusion.txt p.1", "Score: 0.8500", "Reciprocal rank fusion"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteAskResult_text_noEvidence(t *testing.T) {
	response := &models.AskResponse{
		Query:     "ok thanks",
		Answer:    "You're welcome!",
		Intent:    models.IntentGeneralChat,
		QueryTime: 2,
	}
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, response, OutputText); err != nil {
		t.Fatalf("WriteAskResult(text): %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "You're welcome!") {
		t.Errorf("expected answer in output:\n%s", out)
	}
	if !strings.Contains(out, "intent: general_chat") {
		t.Errorf("expected intent line in output:\n%s", out)
	}
	if strings.Contains(out, "Evidence") {
		t.Errorf("no-evidence output should omit the evidence section:\n%s", out)
	}
}

func TestWriteAskResult_unknownFormatTreatedAsText(t *testing.T) {
	response := &models.AskResponse{Query: "x", Answer: "Answer text."}
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, response, OutputFormat("unknown")); err != nil {
		t.Fatalf("WriteAskResult(unknown): %v", err)
	}
	if !strings.Contains(buf.String(), "Answer text.") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"empty", "", 5, ""},
		{"short", "hi", 5, "hi"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"maxLen zero", "ab", 0, "ab"},
		{"maxLen negative", "ab", -1, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxWords int
		want     string
	}{
		{"empty", "", 3, ""},
		{"few words", "one two", 3, "one two"},
		{"exact", "one two three", 3, "one two three"},
		{"more", "one two three four", 3, "one two three..."},
		{"single long", "word", 1, "word"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWords(tt.s, tt.maxWords)
			if got != tt.want {
				t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.s, tt.maxWords, got, tt.want)
			}
		})
	}
}

func TestPrintAskResult(t *testing.T) {
	response := &models.AskResponse{
		Query:     "print test",
		Answer:    "Printed answer.",
		Intent:    models.IntentGeneralChat,
		QueryTime: 1,
	}
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
		_ = w.Close()
	}()
	PrintAskResult(response)
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	out := buf.String()
	if !strings.Contains(out, "Printed answer.") {
		t.Errorf("PrintAskResult should write to stdout; got %q", out)
	}
}
