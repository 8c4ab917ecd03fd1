package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/cellgraph/pkg/position"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

func TestSheetTable(t *testing.T) {
	s := sheet.New()
	for ref, text := range map[string]string{"A1": "2", "B2": "=A1*3", "C1": "'note"} {
		if err := s.SetCell(position.MustParse(ref), text); err != nil {
			t.Fatal(err)
		}
	}

	values := sheetTable(s, false)
	for _, want := range []string{"A", "B", "C", "6", "note"} {
		if !strings.Contains(values, want) {
			t.Errorf("sheetTable(values) missing %q:\n%s", want, values)
		}
	}

	texts := sheetTable(s, true)
	for _, want := range []string{"=A1*3", "'note"} {
		if !strings.Contains(texts, want) {
			t.Errorf("sheetTable(texts) missing %q:\n%s", want, texts)
		}
	}
}

func TestSheetTableEmpty(t *testing.T) {
	if got := sheetTable(sheet.New(), false); !strings.Contains(got, "empty sheet") {
		t.Errorf("sheetTable(empty) = %q", got)
	}
}

func TestWriteSheet(t *testing.T) {
	s := sheet.New()
	if err := s.SetCell(position.MustParse("B1"), "=A1+1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		mode string
		want string
	}{
		{outputValues, "\t1\n"},
		{outputTexts, "\t=A1+1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeSheet(&buf, s, tt.mode); err != nil {
				t.Fatalf("writeSheet() error: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("writeSheet(%s) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
