package service

import (
	"fmt"
	"regexp"
	"strings"
)

var prositeRepeat = regexp.MustCompile(`^(.+)\((\d+)(?:,(\d+))?\)$`)

// PrositeToRegex converts a PROSITE-style pattern to a Go regular
// expression. Rules: x matches any amino acid, [ABC] one of, {ABC} none
// of, '-' separates elements, (n) and (n,m) repeat the preceding element,
// '<' anchors the N-terminus and '>' the C-terminus.
func PrositeToRegex(pattern string) (string, error) {
	pattern = strings.TrimSpace(strings.Trim(pattern, "."))
	if pattern == "" {
		return "", fmt.Errorf("empty pattern")
	}
	var out strings.Builder
	for _, part := range strings.Split(pattern, "-") {
		elem, err := prositeElement(part)
		if err != nil {
			return "", err
		}
		out.WriteString(elem)
	}
	return out.String(), nil
}

func prositeElement(part string) (string, error) {
	switch {
	case part == "":
		return "", fmt.Errorf("empty pattern element")
	case part == "x" || part == "X":
		return ".", nil
	case part == "<":
		return "^", nil
	case part == ">":
		return "$", nil
	case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
		inner := part[1 : len(part)-1]
		if inner == "" {
			return "", fmt.Errorf("empty exclusion set")
		}
		return "[^" + inner + "]", nil
	case strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]"):
		if part == "[]" {
			return "", fmt.Errorf("empty alternative set")
		}
		return part, nil
	}

	if m := prositeRepeat.FindStringSubmatch(part); m != nil {
		base, err := PrositeToRegex(m[1])
		if err != nil {
			return "", err
		}
		if m[3] != "" {
			return fmt.Sprintf("(?:%s){%s,%s}", base, m[2], m[3]), nil
		}
		return fmt.Sprintf("(?:%s){%s}", base, m[2]), nil
	}

	// Literal amino acid(s).
	return regexp.QuoteMeta(part), nil
}
