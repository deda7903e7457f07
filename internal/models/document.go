// Package models defines core data structures for extracted pages, fragments, and answers.
package models

// PageText is one page of text extracted from a source document.
// Page numbering is 1-based and reflects the physical unit of the source
// format (PDF page, spreadsheet sheet, or the whole file for flat formats).
type PageText struct {
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	Page       int    `json:"page"`
}

// Fragment is an indexed piece of a document produced by chunking.
// SequenceIndex orders fragments in the stored corpus and stays unique even
// after deletions leave gaps. Scoring and fusion identify fragments by their
// position in the loaded snapshot slice, not by SequenceIndex.
type Fragment struct {
	Text          string    `json:"text"`
	SourceFile    string    `json:"source_file"`
	Page          int       `json:"page"`
	SequenceIndex int       `json:"sequence_index"`
	Vector        []float32 `json:"-"`
}
