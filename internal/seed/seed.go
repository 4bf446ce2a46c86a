// Package seed loads quotes from a YAML file. Every entry goes through the
// same submission rules as the add form, so a seed file can never break the
// per-source limit or the text uniqueness rule.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen/quotebox/internal/domain"
)

// Entry is one quote in a seed file.
type Entry struct {
	Text   string `yaml:"text"`
	Source string `yaml:"source"`
	Type   string `yaml:"type"`

	// Weight defaults to 1 when omitted. An explicit 0 is kept so the
	// validator rejects it.
	Weight *int `yaml:"weight"`
}

// Submission converts the entry. An unknown type is passed through so the
// validator reports it.
func (e Entry) Submission() domain.Submission {
	typ, err := domain.ParseSourceType(e.Type)
	if err != nil {
		typ = domain.SourceType(e.Type)
	}

	weight := domain.DefaultWeight
	if e.Weight != nil {
		weight = *e.Weight
	}

	return domain.Submission{
		Text:       e.Text,
		SourceName: e.Source,
		SourceType: typ,
		Weight:     weight,
	}
}

type document struct {
	Quotes []Entry `yaml:"quotes"`
}

// Submitter accepts new quotes. *app.QuoteService implements it.
type Submitter interface {
	Submit(ctx context.Context, sub domain.Submission) (*domain.Quote, error)
}

// Result counts what happened to the entries of a seed file.
type Result struct {
	Added    int
	Rejected int
}

// Parse decodes a seed document. Unknown keys are an error so typos in a
// hand written file do not silently drop data.
func Parse(r io.Reader) ([]Entry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, fmt.Errorf("decoding seed file: %w", err)
	}

	return doc.Quotes, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Apply submits entries in order. Rejected entries are logged and skipped;
// any other error stops the run.
func Apply(ctx context.Context, s Submitter, entries []Entry, logger *slog.Logger) (Result, error) {
	var res Result

	for i, e := range entries {
		q, err := s.Submit(ctx, e.Submission())

		var rejected *domain.ValidationErrors
		if errors.As(err, &rejected) {
			res.Rejected++

			logger.WarnContext(ctx, "seed entry rejected",
				slog.Int("index", i),
				slog.String("source", e.Source),
				slog.String("reason", rejected.Error()),
			)

			continue
		}

		if err != nil {
			return res, fmt.Errorf("seed entry %d: %w", i, err)
		}

		res.Added++

		logger.DebugContext(ctx, "seed entry added", slog.Int64("quote_id", q.ID))
	}

	return res, nil
}
