package signals_test

import (
	"testing"

	"github.com/cognifloe/control-plane/internal/catalog"
	"github.com/cognifloe/control-plane/internal/signals"
	"github.com/cognifloe/control-plane/pkg/models"
)

func newExtractor(t *testing.T) *signals.Extractor {
	t.Helper()
	return signals.NewExtractor(catalog.Default())
}

func equalTags(a, b []models.Tag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExtract(t *testing.T) {
	e := newExtractor(t)

	tests := []struct {
		name  string
		text  string
		files []models.FileDescriptor
		want  []models.Tag
	}{
		{
			name: "empty",
			want: []models.Tag{},
		},
		{
			name: "no keywords",
			text: "Please help me with my thing",
			want: []models.Tag{},
		},
		{
			name: "case insensitive",
			text: "Forward every EMAIL to accounting",
			want: []models.Tag{models.TagEmail},
		},
		{
			name: "catalog order regardless of text order",
			text: "send a Slack alert, then write a report from the spreadsheet",
			want: []models.Tag{models.TagData, models.TagNotification, models.TagReport},
		},
		{
			name: "substring not word boundary",
			text: "runs on a scheduled basis",
			want: []models.Tag{models.TagScheduler},
		},
		{
			name: "stem keyword",
			text: "validating totals",
			want: []models.Tag{models.TagValidation},
		},
		{
			name:  "pdf file adds document",
			text:  "forward each email",
			files: []models.FileDescriptor{{Name: "invoice.pdf"}},
			want:  []models.Tag{models.TagEmail, models.TagDocument},
		},
		{
			name:  "image media type adds document",
			files: []models.FileDescriptor{{Name: "upload", Type: "image/png"}},
			want:  []models.Tag{models.TagDocument},
		},
		{
			name:  "csv adds data",
			files: []models.FileDescriptor{{Name: "Export.CSV"}},
			want:  []models.Tag{models.TagData},
		},
		{
			name:  "file tag not duplicated",
			text:  "scan the invoice",
			files: []models.FileDescriptor{{Name: "a.pdf"}, {Name: "b.jpg"}},
			want:  []models.Tag{models.TagDocument},
		},
		{
			name:  "other files ignored",
			files: []models.FileDescriptor{{Name: "notes.txt", Type: "text/plain"}},
			want:  []models.Tag{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text, tt.files)
			if got == nil {
				t.Fatal("Extract() returned nil, want non-nil slice")
			}
			if !equalTags(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := newExtractor(t)
	text := "Pull customer feedback from the API, check for fraud and build a dashboard"
	first := e.Extract(text, nil)
	for i := 0; i < 20; i++ {
		if got := e.Extract(text, nil); !equalTags(got, first) {
			t.Fatalf("Extract() run %d = %v, want %v", i, got, first)
		}
	}
}

func TestContains(t *testing.T) {
	if !signals.Contains("Send a WEEKLY digest", "weekly") {
		t.Error("Contains() should match case-insensitively")
	}
	if signals.Contains("nothing here", "weekly", "daily") {
		t.Error("Contains() matched absent keywords")
	}
}
