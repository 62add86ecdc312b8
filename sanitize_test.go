package latexcalc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	latexcalc "github.com/leo5358/latex-calc"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"inline delimiters", "  $1+2$  ", "1+2"},
		{"display delimiters", "$$x^2$$", "x^2"},
		{"bracket delimiters", `\[ \frac{1}{2} \]`, `\frac{1}{2}`},
		{"paren delimiters", `\( 3 \)`, "3"},
		{"only delimiters", "$$", ""},
		{"blank", " \n\t ", ""},
		{"comment", "1+2 % the sum", "1+2"},
		{"escaped percent", `50\% + 1 % note`, `50\% + 1`},
		{"double backslash before percent", `1 \\% gone`, "1"},
		{"comment per line", "1 % a\n+ 2 % b", "1 \n+ 2"},
		{"label", `x + 1 \label{eq:one}`, "x + 1"},
		{"tag", `2 \tag{3}`, "2"},
		{"nonumber", `a \nonumber`, "a"},
		{"last line", `1 + 1 \\ 2 + 2`, "2 + 2"},
		{"last line with spacing", `1 \\[4pt] 7`, "7"},
		{"trailing break", `1 + 1 \\ 5 \\`, "5"},
		{
			"align block",
			"\\begin{align}\n  a &= 1 + 1 \\\\\n    &= 2 + 3\n\\end{align}",
			"2 + 3",
		},
		{"alignat argument", `\begin{alignat*}{2} x &= 4 \end{alignat*}`, "x  = 4"},
		{"equation", `\begin{equation} 6 \cdot 7 \end{equation}`, `6 \cdot 7`},
		{"trailing equals", "1+2=", "1+2"},
		{
			"matrix rows survive",
			`\begin{pmatrix}1&2\\3&4\end{pmatrix}`,
			`\begin{pmatrix}1&2\\3&4\end{pmatrix}`,
		},
		{
			"break after matrix",
			`\begin{pmatrix}1&2\\3&4\end{pmatrix} \\ \begin{bmatrix}5\end{bmatrix}`,
			`\begin{bmatrix}5\end{bmatrix}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, latexcalc.Sanitize(tt.raw))
		})
	}
}
