package stockbook

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []RawRow
		wantErr error
	}{
		{
			name:  "positional",
			input: "2024-01-02,185,1000\n2024-01-03,186.5\n",
			want: []RawRow{
				{Source: "in.csv", Line: 1, Date: "2024-01-02", Close: "185", Volume: "1000"},
				{Source: "in.csv", Line: 2, Date: "2024-01-03", Close: "186.5"},
			},
		},
		{
			name:  "header by name",
			input: "Date,Open,High,Low,Close,Adj Close,Volume\n2024-01-02,1,2,0.5,185,184,1000\n",
			want: []RawRow{
				{Source: "in.csv", Line: 2, Date: "2024-01-02", Close: "185", Volume: "1000"},
			},
		},
		{
			name:  "header without volume",
			input: "close, date\n185, 1/2/24\n",
			want: []RawRow{
				{Source: "in.csv", Line: 2, Date: "1/2/24", Close: "185"},
			},
		},
		{
			name:  "byte order mark before header",
			input: "\ufeffDate,Volume,Close\n2024-01-02,1000,185\n",
			want: []RawRow{
				{Source: "in.csv", Line: 2, Date: "2024-01-02", Close: "185", Volume: "1000"},
			},
		},
		{
			name:  "byte order mark before quoted header",
			input: "\ufeff\"Date\",\"Close\"\n\"2024-01-02\",\"185\"\n",
			want: []RawRow{
				{Source: "in.csv", Line: 2, Date: "2024-01-02", Close: "185"},
			},
		},
		{
			name:  "byte order mark without header",
			input: "\ufeff2024-01-02,185,1000\n",
			want: []RawRow{
				{Source: "in.csv", Line: 1, Date: "2024-01-02", Close: "185", Volume: "1000"},
			},
		},
		{
			name:  "header only",
			input: "Date,Close,Volume\n",
		},
		{
			name: "empty",
		},
		{
			name:    "header without close",
			input:   "Date,Open\n2024-01-02,1\n",
			wantErr: ErrParseError,
		},
		{
			name:    "broken quotes",
			input:   "2024-01-02,\"185,1000\n",
			wantErr: ErrParseError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input), "in.csv")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadCSV() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReadCSV() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCSV_FileNotFound(t *testing.T) {
	_, err := ParseCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("ParseCSV() error = %v, want ErrFileNotFound", err)
	}
}

func TestImportCSV(t *testing.T) {
	filename := writeFile(t, "aapl.csv", "Date,Close,Volume\n2024-01-02,185,1000\n2024-01-03,oops,1200\n2024-01-04,187,900\n")

	p := NewPortfolio()
	p.AddStock("AAPL", "Apple", D(10))
	report, err := ImportCSV(p, "AAPL", filename)
	if err != nil {
		t.Fatalf("ImportCSV() unexpected error: %v", err)
	}
	if report.Merged != 2 || len(report.Skipped) != 1 {
		t.Fatalf("ImportCSV() = %d merged %d skipped, want 2 and 1", report.Merged, len(report.Skipped))
	}
	if got := report.Skipped[0].Row.Line; got != 3 {
		t.Errorf("skipped row line = %d, want 3", got)
	}
	s, _ := p.Stock("AAPL")
	if diff := cmp.Diff([]string{"2024-01-02 185 1000", "2024-01-04 187 900"}, history(s)); diff != "" {
		t.Errorf("ImportCSV() history mismatch (-want +got):\n%s", diff)
	}

	if _, err := ImportCSV(p, "MSFT", filename); !errors.Is(err, ErrUnknownStock) {
		t.Errorf("ImportCSV(MSFT) error = %v, want ErrUnknownStock", err)
	}
}

func TestExportCSV_RoundTrip(t *testing.T) {
	s := mustStock(t, "AAPL", "Apple", 10)
	Merge(s, []RawRow{row("2024-01-03", "186.5", "1200"), row("2024-01-02", "185", "")})

	var buf bytes.Buffer
	if err := ExportCSV(&buf, s); err != nil {
		t.Fatalf("ExportCSV() unexpected error: %v", err)
	}
	want := "Date,Close,Volume\n2024-01-02,185,0\n2024-01-03,186.5,1200\n"
	if got := buf.String(); got != want {
		t.Errorf("ExportCSV() = %q, want %q", got, want)
	}

	rows, err := ReadCSV(&buf, "export")
	if err != nil {
		t.Fatalf("ReadCSV() unexpected error: %v", err)
	}
	imported := mustStock(t, "AAPL", "Apple", 10)
	Merge(imported, rows)
	if diff := cmp.Diff(history(s), history(imported)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
