package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flashquiz/internal/domain"
)

const validBank = `{
  "Math": [
    {"q": "1+1?", "a": "2", "choices": ["1", "2", "3", "4"]},
    {"q": "2+2?", "a": "4", "choices": ["2", "3", "4", "5"]},
    {"q": "3+3?", "a": "6", "choices": ["4", "5", "6", "7"]},
    {"q": "4+4?", "a": "8", "choices": ["6", "7", "8", "9"]},
    {"q": "5+5?", "a": "10", "choices": ["8", "9", "10", "11"]}
  ]
}`

func writeBank(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	return path
}

func TestLoadBank(t *testing.T) {
	bank, err := LoadBank(writeBank(t, validBank), 5)
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if got := bank.Topics(); len(got) != 1 || got[0] != "Math" {
		t.Fatalf("expected [Math], got %v", got)
	}
	if len(bank["Math"]) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(bank["Math"]))
	}
	if q := bank["Math"][0]; q.Prompt != "1+1?" || q.Answer != "2" {
		t.Fatalf("unexpected first question %+v", q)
	}
}

func TestLoadBankMissingFile(t *testing.T) {
	if _, err := LoadBank(filepath.Join(t.TempDir(), "nope.json"), 5); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadBankMalformedJSON(t *testing.T) {
	if _, err := LoadBank(writeBank(t, "{not json"), 5); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}

func TestLoadBankTooFewQuestions(t *testing.T) {
	_, err := LoadBank(writeBank(t, validBank), 6)
	if !errors.Is(err, domain.ErrInvalidBank) {
		t.Fatalf("expected invalid bank, got %v", err)
	}
}

func TestLoadBankWrongChoiceCount(t *testing.T) {
	const bad = `{"Math": [
		{"q": "1+1?", "a": "2", "choices": ["1", "2"]},
		{"q": "2+2?", "a": "4", "choices": ["2", "3", "4", "5"]}
	]}`
	_, err := LoadBank(writeBank(t, bad), 2)
	if !errors.Is(err, domain.ErrInvalidBank) {
		t.Fatalf("expected invalid bank, got %v", err)
	}
}

func TestLoadBankAnswerNotAmongChoices(t *testing.T) {
	const bad = `{"Math": [
		{"q": "1+1?", "a": "7", "choices": ["1", "2", "3", "4"]},
		{"q": "2+2?", "a": "4", "choices": ["2", "3", "4", "5"]}
	]}`
	_, err := LoadBank(writeBank(t, bad), 2)
	if !errors.Is(err, domain.ErrInvalidBank) {
		t.Fatalf("expected invalid bank, got %v", err)
	}
}
