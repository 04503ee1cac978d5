package export

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

type row struct {
	ID    int64
	Titre *string
	Tags  []int
	Meta  map[string]string
}

func strPtr(s string) *string { return &s }

func columns() []Column[row] {
	return []Column[row]{
		{Key: "id", Label: "ID", Value: func(r row) any { return r.ID }},
		{Key: "titre", Label: "Titre", Value: func(r row) any { return r.Titre }},
	}
}

func TestToCSV_QuotesComma(t *testing.T) {
	out, err := ToCSV([]row{{ID: 1, Titre: strPtr("A, B")}}, columns())
	if err != nil {
		t.Fatalf("ToCSV вернул ошибку: %v", err)
	}

	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatal("результат должен начинаться с BOM")
	}

	lines := strings.Split(strings.TrimPrefix(out, "\uFEFF"), "\n")
	if len(lines) != 2 {
		t.Fatalf("ожидается 2 строки, получено %d: %q", len(lines), out)
	}
	if lines[0] != "ID,Titre" {
		t.Errorf("заголовок = %q, ожидается %q", lines[0], "ID,Titre")
	}
	if lines[1] != `1,"A, B"` {
		t.Errorf("строка = %q, ожидается %q", lines[1], `1,"A, B"`)
	}
}

func TestToCSV_ValueTransformations(t *testing.T) {
	cols := []Column[row]{
		{Key: "titre", Value: func(r row) any { return r.Titre }},
		{Key: "tags", Value: func(r row) any { return r.Tags }},
		{Key: "meta", Value: func(r row) any { return r.Meta }},
	}
	records := []row{
		{Titre: nil, Tags: []int{1, 2}, Meta: map[string]string{"k": "v"}},
		{Titre: strPtr(`say "hi"`)},
		{Titre: strPtr("line1\nline2")},
	}

	out, err := ToCSV(records, cols)
	if err != nil {
		t.Fatalf("ToCSV вернул ошибку: %v", err)
	}

	expected := "\uFEFF" + strings.Join([]string{
		"titre,tags,meta",
		`,"[1,2]","{""k"":""v""}"`,
		`"say ""hi""",,`,
		"\"line1\nline2\",,",
	}, "\n")
	if out != expected {
		t.Errorf("ToCSV =\n%q\nожидается\n%q", out, expected)
	}
}

func TestToCSV_Empty(t *testing.T) {
	_, err := ToCSV([]row{}, columns())
	if !errors.Is(err, ErrEmptyExport) {
		t.Errorf("ожидается ErrEmptyExport, получено %v", err)
	}
}

func TestColumn_HeaderFallback(t *testing.T) {
	c := Column[row]{Key: "titre"}
	if c.Header() != "titre" {
		t.Errorf("Header() = %q, ожидается titre", c.Header())
	}
}

func TestFileName(t *testing.T) {
	date := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)
	if got := FileName("centres", date); got != "centres_2024-03-07.csv" {
		t.Errorf("FileName = %q", got)
	}
	if got := XLSXFileName("etats", date); got != "etats_2024-03-07.xlsx" {
		t.Errorf("XLSXFileName = %q", got)
	}
}

func TestFormatValue(t *testing.T) {
	var nilPtr *string
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "nil-указатель", input: nilPtr, expected: ""},
		{name: "целое", input: int64(42), expected: "42"},
		{name: "дробное", input: 1.5, expected: "1.5"},
		{name: "bool", input: true, expected: "true"},
		{name: "структура", input: struct {
			A int `json:"a"`
		}{A: 1}, expected: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.input); got != tt.expected {
				t.Errorf("FormatValue = %q, ожидается %q", got, tt.expected)
			}
		})
	}
}

func TestToXLSX(t *testing.T) {
	buf, err := ToXLSX([]row{{ID: 3, Titre: strPtr("A, B")}}, columns(), "Centres")
	if err != nil {
		t.Fatalf("ToXLSX вернул ошибку: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("не удалось открыть книгу: %v", err)
	}
	defer f.Close()

	header, _ := f.GetCellValue("Centres", "B1")
	if header != "Titre" {
		t.Errorf("B1 = %q, ожидается Titre", header)
	}
	value, _ := f.GetCellValue("Centres", "B2")
	if value != "A, B" {
		t.Errorf("B2 = %q, ожидается без экранирования", value)
	}

	if _, err := ToXLSX([]row{}, columns(), "Centres"); !errors.Is(err, ErrEmptyExport) {
		t.Errorf("ожидается ErrEmptyExport, получено %v", err)
	}
}
