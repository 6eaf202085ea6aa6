package delim_test

import (
	"testing"

	"github.com/palantir/blastomatic/pkg/pipeline/delim"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want rune
	}{
		{name: "csv", in: "meta.csv", want: ','},
		{name: "tsv", in: "hits.tsv", want: '\t'},
		{name: "tab", in: "hits.tab", want: '\t'},
		{name: "txt", in: "hits.txt", want: '\t'},
		{name: "upper case", in: "HITS.TSV", want: '\t'},
		{name: "mixed case", in: "out.TxT", want: '\t'},
		{name: "no extension", in: "hits", want: ','},
		{name: "unknown extension", in: "hits.out", want: ','},
		{name: "directory with dot", in: "runs.tsv/hits", want: ','},
		{name: "gzip tsv", in: "hits.tsv.gz", want: '\t'},
		{name: "zstd csv", in: "meta.csv.zst", want: ','},
		{name: "empty", in: "", want: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := delim.Infer(tt.in); got != tt.want {
				t.Fatalf("Infer(%q)=%q want=%q", tt.in, got, tt.want)
			}
		})
	}
}

// The default delimiter is not honored literally for output: it is a request to
// infer from the filename. Any other explicit delimiter wins. This asymmetry is
// intentional and must not be "fixed".
func TestForOutput_DefaultDelimiterDefersToExtension(t *testing.T) {
	tests := []struct {
		name      string
		requested rune
		filename  string
		want      rune
	}{
		{name: "default on tsv becomes tab", requested: ',', filename: "out.tsv", want: '\t'},
		{name: "default on csv stays comma", requested: ',', filename: "out.csv", want: ','},
		{name: "default on txt becomes tab", requested: ',', filename: "report.TXT", want: '\t'},
		{name: "explicit semicolon on tsv", requested: ';', filename: "out.tsv", want: ';'},
		{name: "explicit tab on csv", requested: '\t', filename: "out.csv", want: '\t'},
		{name: "explicit pipe on unknown", requested: '|', filename: "out", want: '|'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := delim.ForOutput(tt.requested, tt.filename); got != tt.want {
				t.Fatalf("ForOutput(%q, %q)=%q want=%q", tt.requested, tt.filename, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   rune
		wantOK bool
	}{
		{in: ",", want: ',', wantOK: true},
		{in: ";", want: ';', wantOK: true},
		{in: "\t", want: '\t', wantOK: true},
		{in: `\t`, want: '\t', wantOK: true},
		{in: "TAB", want: '\t', wantOK: true},
		{in: "", wantOK: false},
		{in: ",,", wantOK: false},
		{in: "\n", wantOK: false},
		{in: `"`, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := delim.Parse(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Fatalf("Parse(%q)=(%q,%t) want=(%q,%t)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
