package latexcalc

import (
	"regexp"
	"strings"
)

var (
	decorationPattern = regexp.MustCompile(`\\(?:label|tag\*?)\s*\{[^{}]*\}|\\(?:nonumber|notag)\b`)
	displayEnvPattern = regexp.MustCompile(`\\begin\{alignat\*?\}\s*\{\d+\}|\\(?:begin|end)\{(?:equation|align|alignat|gather|multline|flalign|eqnarray|split|displaymath|math)\*?\}`)
	matrixMarker      = regexp.MustCompile(`\\(begin|end)\{(matrix|pmatrix|bmatrix|Bmatrix|vmatrix|Vmatrix|smallmatrix)\}`)
	breakSpacing      = regexp.MustCompile(`^\s*\[[^\]]*\]`)
)

var mathDelimiters = [][2]string{
	{"$$", "$$"},
	{`\[`, `\]`},
	{`\(`, `\)`},
	{"$", "$"},
}

// Sanitize reduces an editor fragment to the single expression it asks to
// evaluate. It strips comments, one pair of math delimiters, equation
// decoration and display environments, keeps only the last line of a
// multi-line block and drops alignment markers outside matrices. An empty
// result means there is nothing to evaluate.
func Sanitize(raw string) string {
	text := stripComments(raw)
	text = stripDelimiters(strings.TrimSpace(text))
	text = decorationPattern.ReplaceAllString(text, "")
	text = displayEnvPattern.ReplaceAllString(text, " ")
	text = lastLine(text)
	text = dropAlignment(text)

	text = strings.TrimSpace(text)
	text = strings.TrimSpace(strings.TrimPrefix(text, "="))
	text = strings.TrimSpace(strings.TrimSuffix(text, "="))
	return text
}

func stripComments(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if pos := findUnescapedPercent(line); pos >= 0 {
			lines[i] = line[:pos]
		}
	}
	return strings.Join(lines, "\n")
}

// findUnescapedPercent returns the offset of the first % not preceded by an
// odd number of backslashes, or -1.
func findUnescapedPercent(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != '%' {
			continue
		}
		backslashes := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return i
		}
	}
	return -1
}

func stripDelimiters(text string) string {
	for _, d := range mathDelimiters {
		open, closing := d[0], d[1]
		if len(text) >= len(open)+len(closing) && strings.HasPrefix(text, open) && strings.HasSuffix(text, closing) {
			return strings.TrimSpace(text[len(open) : len(text)-len(closing)])
		}
	}
	return text
}

// topLevel marks every byte of text that lies outside all matrix
// environments.
func topLevel(text string) []bool {
	mask := make([]bool, len(text))
	depth, next := 0, 0
	markers := matrixMarker.FindAllStringSubmatchIndex(text, -1)
	for i := 0; i < len(text); i++ {
		for next < len(markers) && markers[next][0] == i {
			if text[markers[next][2]:markers[next][3]] == "begin" {
				depth++
			} else if depth > 0 {
				depth--
			}
			next++
		}
		mask[i] = depth == 0
	}
	return mask
}

// lastLine keeps the content after the last top-level \\ line break. When
// that content is blank the last non-blank line is kept instead.
func lastLine(text string) string {
	mask := topLevel(text)
	var lines []string
	start := 0
	for i := 0; i+1 < len(text); i++ {
		if !mask[i] || text[i] != '\\' || text[i+1] != '\\' {
			continue
		}
		lines = append(lines, text[start:i])
		i += 2
		if loc := breakSpacing.FindStringIndex(text[i:]); loc != nil {
			i += loc[1]
		}
		start = i
		i--
	}
	if lines == nil {
		return text
	}
	lines = append(lines, text[start:])
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

func dropAlignment(text string) string {
	mask := topLevel(text)
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '&' && mask[i] && (i == 0 || text[i-1] != '\\') {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteByte(text[i])
	}
	return sb.String()
}
