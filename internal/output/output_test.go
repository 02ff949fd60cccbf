package output

import (
	"bytes"
	"context"
	"os"
	"testing"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if p := FromContext(WithPrinter(context.Background(), &buf)); p.Writer() != &buf {
		t.Error("Writer() should return the buffer passed to WithPrinter")
	}
	if p := FromContext(context.Background()); p.Writer() != os.Stdout {
		t.Error("Writer() should default to os.Stdout")
	}
}

func TestPrinter_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(&buf)

	p.Print("sprint", " ", "12")
	p.Printf(" has %d cards", 3)
	p.Println()
	p.Println("done")

	want := "sprint 12 has 3 cards\ndone\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

type card struct {
	ID    int    `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

func TestPrinter_Encode(t *testing.T) {
	t.Parallel()

	v := []card{{ID: 1, Title: "Login"}}

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{FormatJSON, "[\n  {\n    \"id\": 1,\n    \"title\": \"Login\"\n  }\n]\n", false},
		{FormatYAML, "- id: 1\n  title: Login\n", false},
		{FormatTable, "", true},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := New(&buf).Encode(tt.format, v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Encode(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Encode(%q) wrote %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}
