package file

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"flashquiz/internal/domain"
)

// questionRecord matches the on-disk questions.json shape:
//
//	{"Math": [{"q": "...", "a": "...", "choices": ["...", ...]}, ...], ...}
type questionRecord struct {
	Prompt  string   `json:"q"`
	Answer  string   `json:"a"`
	Choices []string `json:"choices"`
}

// LoadBank reads and validates the static question bank. Any failure here is
// a fatal startup error; the server never runs with a partial bank.
func LoadBank(path string, minPerTopic int) (domain.Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read questions file failed")
	}

	var raw map[string][]questionRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse questions file failed")
	}

	bank := make(domain.Bank, len(raw))
	for topic, records := range raw {
		questions := make([]domain.Question, 0, len(records))
		for _, rec := range records {
			questions = append(questions, domain.Question{
				Prompt:  rec.Prompt,
				Answer:  rec.Answer,
				Choices: rec.Choices,
			})
		}
		bank[topic] = questions
	}

	if err := bank.Validate(minPerTopic); err != nil {
		return nil, err
	}
	return bank, nil
}
