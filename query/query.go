package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sig-0/poerates/provider/currencies"
	"github.com/sig-0/poerates/storage/types"
)

const (
	keywordBuy     = "buy"
	keywordWith    = "with"
	keywordInverse = "inverse"

	shortForm = 4 // buy X with Y
	longForm  = 6 // buy X with Y + inverse
)

var (
	ErrMalformedQuery  = errors.New("malformed query")
	ErrUnknownCurrency = errors.New("unknown currency")
)

// MalformedQueryError is returned for directives that can't be parsed.
// It matches ErrMalformedQuery, and ErrUnknownCurrency for unknown names
type MalformedQueryError struct {
	Err    error
	Line   string
	Reason string
}

func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("malformed query %q: %s", e.Line, e.Reason)
}

func (e *MalformedQueryError) Unwrap() error {
	return e.Err
}

func (e *MalformedQueryError) Is(target error) bool {
	return target == ErrMalformedQuery
}

func malformed(line, reason string) error {
	return &MalformedQueryError{
		Line:   line,
		Reason: reason,
	}
}

// Parse parses a single directive, like "buy chaos with alchemy + inverse"
func Parse(line string) (*types.Query, error) {
	tokens := strings.Fields(line)

	if len(tokens) != shortForm && len(tokens) != longForm {
		return nil, malformed(
			line,
			fmt.Sprintf("expected %d or %d words, got %d", shortForm, longForm, len(tokens)),
		)
	}

	if tokens[0] != keywordBuy {
		return nil, malformed(line, fmt.Sprintf("expected %q, got %q", keywordBuy, tokens[0]))
	}

	if tokens[2] != keywordWith {
		return nil, malformed(line, fmt.Sprintf("expected %q, got %q", keywordWith, tokens[2]))
	}

	inverse := len(tokens) == longForm
	if inverse && tokens[5] != keywordInverse {
		return nil, malformed(line, fmt.Sprintf("expected %q, got %q", keywordInverse, tokens[5]))
	}

	var (
		want = tokens[1]
		have = tokens[3]
	)

	wantIndex, ok := currencies.Index(want)
	if !ok {
		return nil, unknownCurrency(line, want)
	}

	haveIndex, ok := currencies.Index(have)
	if !ok {
		return nil, unknownCurrency(line, have)
	}

	return &types.Query{
		Raw:              line,
		Label:            strings.Join(tokens[:shortForm], " "),
		Want:             want,
		Have:             have,
		WantIndex:        wantIndex,
		HaveIndex:        haveIndex,
		InverseRequested: inverse,
	}, nil
}

func unknownCurrency(line, name string) error {
	return &MalformedQueryError{
		Err:    ErrUnknownCurrency,
		Line:   line,
		Reason: fmt.Sprintf("unknown currency %q", name),
	}
}

// ParseLines parses every directive, stopping at the first malformed one
func ParseLines(lines []string) ([]*types.Query, error) {
	queries := make([]*types.Query, 0, len(lines))

	for i, line := range lines {
		q, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		queries = append(queries, q)
	}

	return queries, nil
}
