package gitcmd

import (
	"context"
	"strconv"
	"strings"
)

// TreeStatus summarizes `git status --porcelain=v2 --branch`.
type TreeStatus struct {
	Branch    string
	Upstream  string
	Head      string
	Detached  bool
	Dirty     bool
	Untracked int
	Staged    int
	Unstaged  int
	Unmerged  int
	Ahead     int
	Behind    int
}

// StatusPorcelainV2 returns porcelain v2 status output with branch info.
func StatusPorcelainV2(ctx context.Context, dir string) (string, error) {
	res, err := Run(ctx, []string{"status", "--porcelain=v2", "--branch", "--untracked-files=normal"}, Options{Dir: dir})
	if err != nil {
		return "", failed("status", res, err)
	}
	return res.Stdout, nil
}

// Status runs git status in dir and parses it.
func Status(ctx context.Context, dir string) (TreeStatus, error) {
	out, err := StatusPorcelainV2(ctx, dir)
	if err != nil {
		return TreeStatus{}, err
	}
	return ParseStatusPorcelainV2(out), nil
}

func ParseStatusPorcelainV2(out string) TreeStatus {
	var st TreeStatus
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			fields := strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
			switch fields[1] {
			case "branch.oid":
				if fields[2] != "(initial)" {
					st.Head = shortSHA(fields[2])
				}
			case "branch.head":
				switch fields[2] {
				case "(detached)":
					st.Detached = true
				case "(unknown)":
				default:
					st.Branch = fields[2]
				}
			case "branch.upstream":
				st.Upstream = fields[2]
			case "branch.ab":
				for _, field := range fields[2:] {
					if strings.HasPrefix(field, "+") {
						st.Ahead = parseCount(field[1:])
					}
					if strings.HasPrefix(field, "-") {
						st.Behind = parseCount(field[1:])
					}
				}
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "? "):
			st.Untracked++
			st.Dirty = true
		case strings.HasPrefix(line, "u "):
			st.Unmerged++
			st.Dirty = true
		case strings.HasPrefix(line, "1 "), strings.HasPrefix(line, "2 "):
			fields := strings.Fields(line)
			if len(fields) < 2 || len(fields[1]) < 2 {
				continue
			}
			xy := fields[1]
			if xy[0] != '.' {
				st.Staged++
			}
			if xy[1] != '.' {
				st.Unstaged++
			}
			if xy[0] != '.' || xy[1] != '.' {
				st.Dirty = true
			}
		case strings.HasPrefix(line, "! "):
		default:
			st.Dirty = true
		}
	}
	return st
}

func shortSHA(oid string) string {
	if len(oid) <= 7 {
		return oid
	}
	return oid[:7]
}

func parseCount(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
