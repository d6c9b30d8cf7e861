package repospec

import (
	"fmt"
	"strings"
)

// Line is one configuration record before classification.
type Line struct {
	URL    string
	Branch string
	Ref    string
	Name   string
}

// Fields renders the record back into `URL [BRANCH [REF]]` form. A ref
// without a branch is written with "-" as a branch placeholder.
func (l Line) Fields() []string {
	fields := []string{l.URL}
	switch {
	case l.Ref != "":
		branch := l.Branch
		if branch == "" {
			branch = BranchPlaceholder
		}
		fields = append(fields, branch, l.Ref)
	case l.Branch != "":
		fields = append(fields, l.Branch)
	}
	return fields
}

func (l Line) String() string {
	return strings.Join(l.Fields(), " ")
}

// BranchPlaceholder stands for "no branch" when a ref follows.
const BranchPlaceholder = "-"

// ParseError is a configuration record that violates the line grammar.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %q", e.Source, e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("%s: %s: %q", e.Source, e.Reason, e.Text)
}

// ParseLine parses `URL [BRANCH [REF]]`. Blank and comment-only lines
// return ok=false with no error.
func ParseLine(text string) (Line, bool, error) {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Line{}, false, nil
	}
	if len(fields) > 3 {
		return Line{}, false, fmt.Errorf("expected URL [BRANCH [REF]], got %d fields", len(fields))
	}
	line := Line{URL: fields[0]}
	if len(fields) > 1 && fields[1] != BranchPlaceholder {
		line.Branch = fields[1]
	}
	if len(fields) > 2 {
		line.Ref = fields[2]
	}
	return NewLine(line.URL, line.Branch, line.Ref)
}

// NewLine validates the fields of a record and derives its name.
func NewLine(url, branch, ref string) (Line, bool, error) {
	url = strings.TrimSpace(url)
	branch = strings.TrimSpace(branch)
	ref = strings.TrimSpace(ref)
	if branch == BranchPlaceholder {
		branch = ""
	}
	if url == "" {
		return Line{}, false, fmt.Errorf("URL is empty")
	}
	for _, field := range []string{url, branch, ref} {
		if strings.ContainsAny(field, " \t\r\n") {
			return Line{}, false, fmt.Errorf("field %q contains whitespace", field)
		}
	}
	name, err := DerivedName(url)
	if err != nil {
		return Line{}, false, err
	}
	return Line{URL: url, Branch: branch, Ref: ref, Name: name}, true, nil
}

// DerivedName is the last path element of url without a trailing ".git".
func DerivedName(url string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(url), "/\\")
	if i := strings.LastIndexAny(trimmed, "/\\:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	name := strings.TrimSuffix(trimmed, ".git")
	switch name {
	case "", ".", "..":
		return "", fmt.Errorf("cannot derive a repository name from %q", url)
	}
	return name, nil
}

// ParseText parses a whole legacy-format document. Malformed lines are
// returned as ParseErrors and never stop the remaining lines.
func ParseText(source, text string) ([]Line, []*ParseError) {
	var lines []Line
	var errs []*ParseError
	for i, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line, ok, err := ParseLine(raw)
		if err != nil {
			errs = append(errs, &ParseError{
				Source: source,
				Line:   i + 1,
				Text:   strings.TrimSpace(raw),
				Reason: err.Error(),
			})
			continue
		}
		if ok {
			lines = append(lines, line)
		}
	}
	return lines, errs
}
