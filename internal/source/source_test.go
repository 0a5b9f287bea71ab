package source

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dpham/unified-inbox/internal/model"
)

func TestIsUnknownType(t *testing.T) {
	err := &UnknownTypeError{SourceType: model.SourceType("mystery")}
	if !IsUnknownType(err) {
		t.Error("direct UnknownTypeError not recognized")
	}
	if !IsUnknownType(fmt.Errorf("dispatching: %w", err)) {
		t.Error("wrapped UnknownTypeError not recognized")
	}
	if IsUnknownType(errors.New("other")) {
		t.Error("unrelated error misclassified")
	}
}

func TestTruncatePreview(t *testing.T) {
	short := "brief message"
	if got := TruncatePreview(short); got != short {
		t.Errorf("short preview changed: %q", got)
	}

	exact := strings.Repeat("a", PreviewBudget)
	if got := TruncatePreview(exact); got != exact {
		t.Errorf("exact-budget preview changed: %q", got)
	}

	long := strings.Repeat("a", PreviewBudget+1)
	got := TruncatePreview(long)
	if got != strings.Repeat("a", PreviewBudget)+"..." {
		t.Errorf("long preview = %q", got)
	}
}

func TestTruncatePreviewCountsRunes(t *testing.T) {
	long := strings.Repeat("é", PreviewBudget+5)
	got := TruncatePreview(long)

	want := strings.Repeat("é", PreviewBudget) + "..."
	if got != want {
		t.Errorf("multibyte preview = %q, want %q", got, want)
	}
}

func TestItemID(t *testing.T) {
	if got := ItemID("sms", "42"); got != "sms-42" {
		t.Errorf("ItemID = %q, want sms-42", got)
	}
}
