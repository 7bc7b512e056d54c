package utils

import "strings"

func Indent(text, indent string) string {
	if len(strings.TrimSpace(text)) == 0 {
		return indent
	}
	var sb strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			sb.WriteString(line)
			continue
		}
		sb.WriteString(indent + line)
	}
	return sb.String()
}
