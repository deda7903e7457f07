package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	pages, err := e.ExtractBytes([]byte("Hello world\nLine 2"), ".txt", "notes.txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	p := pages[0]
	if p.Text != "Hello world\nLine 2" {
		t.Errorf("text = %q", p.Text)
	}
	if p.SourceFile != "notes.txt" || p.Page != 1 {
		t.Errorf("provenance = %q p.%d", p.SourceFile, p.Page)
	}
}

func TestExtractBytes_plainUTF8(t *testing.T) {
	e := NewExtractor()
	pages, err := e.ExtractBytes([]byte("caf\xc3\xa9"), ".md", "readme.md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if pages[0].Text != "café" {
		t.Errorf("got %q", pages[0].Text)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	pages, err := e.ExtractBytes([]byte("hello\x80world"), ".txt", "bad.txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if pages[0].Text != "hello�world" {
		t.Errorf("got %q", pages[0].Text)
	}
}

func TestExtractBytes_unknownExtension(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractBytes([]byte("raw content"), ".xyz", "file.xyz")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractBytes_emptyContent(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractBytes([]byte("   \n\t  "), ".txt", "empty.txt")
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestExtractBytes_excelSheetsArePages(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	if _, err := f.NewSheet("Sheet2"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetCellValue("Sheet2", "A1", "Second sheet")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	e := NewExtractor()
	pages, err := e.ExtractBytes(buf.Bytes(), ".xlsx", "data.xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Text != "Title\nValue 1\tValue 2" {
		t.Errorf("sheet 1 text = %q", pages[0].Text)
	}
	if pages[0].Page != 1 || pages[1].Page != 2 {
		t.Errorf("page numbers = %d, %d", pages[0].Page, pages[1].Page)
	}
	if pages[1].Text != "Second sheet" {
		t.Errorf("sheet 2 text = %q", pages[1].Text)
	}
}

func TestExtract_plainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	pages, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if pages[0].Text != "File content" {
		t.Errorf("text = %q", pages[0].Text)
	}
	if pages[0].SourceFile != "test.txt" {
		t.Errorf("source = %q, want base name", pages[0].SourceFile)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract("/nonexistent/path/file.txt"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

// minimalDocx returns a minimal .docx zip with word/document.xml containing
// each text in its own paragraph.
func minimalDocx(paragraphs ...string) []byte {
	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	e := NewExtractor()
	pages, err := e.ExtractBytes(minimalDocx("Searchable docx content"), ".docx", "doc.docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if len(pages) != 1 || pages[0].Page != 1 {
		t.Fatalf("expected a single page 1, got %+v", pages)
	}
	if pages[0].Text != "Searchable docx content" {
		t.Errorf("text = %q", pages[0].Text)
	}
}

func TestExtractBytes_docxParagraphsBecomeNewlines(t *testing.T) {
	e := NewExtractor()
	pages, err := e.ExtractBytes(minimalDocx("First paragraph.", "Second paragraph."), ".docx", "doc.docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	want := "First paragraph.\nSecond paragraph."
	if pages[0].Text != want {
		t.Errorf("text = %q, want %q", pages[0].Text, want)
	}
}

func TestExtractBytes_docxWithContentTypesOverride(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/word/document2.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	fw, _ := w.Create("word/document2.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Content from document2</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()

	e := NewExtractor()
	pages, err := e.ExtractBytes(buf.Bytes(), ".docx", "doc.docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if pages[0].Text != "Content from document2" {
		t.Errorf("text = %q", pages[0].Text)
	}
}

func TestExtractBytes_docxContentTypesReversedOrder(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/word/document3.xml"/>
</Types>`))
	fw, _ := w.Create("word/document3.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Reversed order test</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()

	e := NewExtractor()
	pages, err := e.ExtractBytes(buf.Bytes(), ".docx", "doc.docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if pages[0].Text != "Reversed order test" {
		t.Errorf("text = %q", pages[0].Text)
	}
}

func TestExtractBytes_docxNotZip(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), ".docx", "doc.docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".docx", ".xlsx", ".txt", ".md", ".PDF"} {
		if !Supported(ext) {
			t.Errorf("Supported(%q) = false", ext)
		}
	}
	for _, ext := range []string{".pptx", ".odp", ".exe", ""} {
		if Supported(ext) {
			t.Errorf("Supported(%q) = true", ext)
		}
	}
}
