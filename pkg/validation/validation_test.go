package validation

import (
	"testing"

	"chatcore/pkg/errs"
	"chatcore/pkg/models"
)

func TestUnknownTypeAlwaysRejected(t *testing.T) {
	SetRules(Rules{})
	t.Cleanup(func() { SetRules(Rules{}) })

	if err := CheckMessageType(models.MessageOther); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEmptyWhitelistAllowsKnownTypes(t *testing.T) {
	SetRules(Rules{})
	t.Cleanup(func() { SetRules(Rules{}) })

	for _, typ := range []models.MessageType{models.MessageText, models.MessageFile, models.MessageImage, models.MessageSystem} {
		if err := CheckMessageType(typ); err != nil {
			t.Fatalf("type %q: %v", typ, err)
		}
	}
}

func TestWhitelistRestrictsTypes(t *testing.T) {
	SetRules(Rules{AllowedTypes: []models.MessageType{models.MessageText}})
	t.Cleanup(func() { SetRules(Rules{}) })

	if err := CheckMessageType(models.MessageText); err != nil {
		t.Fatalf("text should pass: %v", err)
	}
	if err := CheckMessageType(models.MessageFile); !errs.IsValidation(err) {
		t.Fatalf("file should be rejected, got %v", err)
	}
}

func TestAttachmentBound(t *testing.T) {
	SetRules(Rules{MaxAttachments: 2})
	t.Cleanup(func() { SetRules(Rules{}) })

	if err := CheckAttachments([]string{"a", "b"}); err != nil {
		t.Fatalf("within bound: %v", err)
	}
	if err := CheckAttachments([]string{"a", "b", "c"}); !errs.IsValidation(err) {
		t.Fatalf("over bound should be rejected, got %v", err)
	}

	SetRules(Rules{})
	if err := CheckAttachments(make([]string, 100)); err != nil {
		t.Fatalf("zero means unlimited: %v", err)
	}
}
