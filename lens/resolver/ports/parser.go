package resolverports

import "context"

// ParsedSubject holds the structured fields extracted from free-form text.
// Every field is optional; callers must tolerate the zero value.
type ParsedSubject struct {
	Name            string
	BirthDate       string // "YYYY-MM-DD" or "YYYY" when only the year is known
	Gender          string
	AddressKeywords []string
	IDNumberTail    string // last 4 digits of a national id, if present
}

// ParseResolution is the graph parser's combined answer: the subject it read
// out of the text plus ranked internal candidates for that subject.
type ParseResolution struct {
	Subject    *ParsedSubject
	Candidates []Candidate
}

// GraphParser sends free text to the structured-extraction backend and
// resolves the parsed subject against the internal graph in one call.
type GraphParser interface {
	ParseAndResolve(ctx context.Context, text string) (ParseResolution, error)
}
