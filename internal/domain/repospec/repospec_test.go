package repospec

import "testing"

func TestParseLine(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    Line
		wantOK  bool
		wantErr bool
	}{
		{name: "blank", input: "   "},
		{name: "comment", input: "# repos"},
		{name: "url only", input: "https://x/repo-a.git", want: Line{URL: "https://x/repo-a.git", Name: "repo-a"}, wantOK: true},
		{name: "branch", input: "  https://x/repo-b.git develop  ", want: Line{URL: "https://x/repo-b.git", Branch: "develop", Name: "repo-b"}, wantOK: true},
		{name: "ref", input: "https://x/repo-c.git main v1.0.0", want: Line{URL: "https://x/repo-c.git", Branch: "main", Ref: "v1.0.0", Name: "repo-c"}, wantOK: true},
		{name: "placeholder branch", input: "https://x/repo-c.git - v1.0.0", want: Line{URL: "https://x/repo-c.git", Ref: "v1.0.0", Name: "repo-c"}, wantOK: true},
		{name: "trailing comment", input: "git@github.com:org/tool.git main # pinned later", want: Line{URL: "git@github.com:org/tool.git", Branch: "main", Name: "tool"}, wantOK: true},
		{name: "too many fields", input: "https://x/repo-a.git main v1 extra", wantErr: true},
		{name: "no name", input: "https://x/.git", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := ParseLine(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if got != tc.want {
				t.Fatalf("line = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDerivedName(t *testing.T) {
	cases := map[string]string{
		"https://github.com/org/repo-a.git": "repo-a",
		"https://github.com/org/repo-a":     "repo-a",
		"git@github.com:org/repo-b.git":     "repo-b",
		"git@host:repo-c.git":               "repo-c",
		"/srv/git/repo-d.git/":              "repo-d",
		"file:///srv/git/repo-e":            "repo-e",
		"../relative/repo-f":                "repo-f",
		"my.lib.git":                        "my.lib",
	}
	for input, want := range cases {
		got, err := DerivedName(input)
		if err != nil {
			t.Fatalf("DerivedName(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("DerivedName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	line, _, err := ParseLine("https://x/repo-a.git")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	spec := Classify(line, "feature-x")
	if spec.Kind != KindHeadTracking || spec.Branch != "feature-x" {
		t.Fatalf("spec = %+v, want head-tracking on feature-x", spec)
	}

	line, _, err = ParseLine("https://x/repo-c.git main v1.0.0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	spec = Classify(line, "feature-x")
	if !spec.Pinned() || spec.PinnedRef != "v1.0.0" || spec.Target() != "v1.0.0" {
		t.Fatalf("spec = %+v, want pinned at v1.0.0", spec)
	}
}

func TestParseTextSkipsMalformedLines(t *testing.T) {
	text := "# header\nhttps://x/repo-a.git\nhttps://x/bad.git a b c\n\nhttps://x/repo-b.git develop\n"
	lines, errs := ParseText("workspace.conf", text)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if len(errs) != 1 {
		t.Fatalf("errs = %d, want 1", len(errs))
	}
	if errs[0].Line != 3 || errs[0].Source != "workspace.conf" {
		t.Fatalf("err = %+v", errs[0])
	}
}

func TestLineFieldsRoundTrip(t *testing.T) {
	for _, input := range []string{"u/repo-a", "u/repo-b develop", "u/repo-c main v1", "u/repo-d - v2"} {
		line, _, err := ParseLine(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got := line.String(); got != input {
			t.Fatalf("String() = %q, want %q", got, input)
		}
	}
}

func TestSameSource(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"git@github.com:org/repo.git", "https://github.com/org/repo", true},
		{"https://GitHub.com/org/repo.git", "ssh://git@github.com/org/repo.git", true},
		{"/srv/git/repo.git", "file:///srv/git/repo", true},
		{"https://github.com/org/repo", "https://github.com/org/other", false},
	}
	for _, tc := range cases {
		if got := SameSource(tc.a, tc.b); got != tc.want {
			t.Fatalf("SameSource(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
