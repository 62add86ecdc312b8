package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	latexcalc "github.com/leo5358/latex-calc"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestEvaluateCommand(t *testing.T) {
	tests := []struct {
		name string
		src  string
		args []string
		want string
	}{
		{"exact", `$\frac{1}{2}+\frac{1}{3}$`, nil, `\frac{5}{6}`},
		{
			"matrices",
			`\begin{pmatrix}1&2\\3&4\end{pmatrix}\begin{pmatrix}5&6\\7&8\end{pmatrix}`,
			nil,
			`\begin{pmatrix}19 & 22 \\ 43 & 50\end{pmatrix}`,
		},
		{"numeric", `$1/3$`, []string{"--mode", "numeric"}, "0.3333"},
		{"numeric integer", `$4/2$`, []string{"--mode", "numeric"}, "2"},
		{"places", `$1/3$`, []string{"--mode=numeric", "--places=2"}, "0.33"},
		{"square", `$x^2$`, nil, "x^{2}"},
		{"squared sum", `$(x+1)^2$`, nil, `\left(x + 1\right)^{2}`},
		{"difference of squares", `$(x+y)(x-y)$`, nil, `\left(x - y\right) \left(x + y\right)`},
		{"antiderivative", `$\int x^2\,dx$`, nil, `\frac{x^{3}}{3}`},
		{"nothing to evaluate", `$$`, nil, ""},
		{"mismatched environment", `\begin{pmatrix}1\end{bmatrix}`, nil, ""},
		{"singular inverse", `\begin{pmatrix}1&2\\2&4\end{pmatrix}^{-1}`, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "fragment.tex", tt.src)
			code, stdout, stderr := run(append(tt.args, path)...)
			assert.Equal(t, 0, code)
			assert.Equal(t, tt.want, stdout)
			assert.Empty(t, stderr)
		})
	}
}

func TestEvaluateCommandExitCodes(t *testing.T) {
	t.Run("missing argument", func(t *testing.T) {
		code, stdout, stderr := run()
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
		assert.Empty(t, stderr)
	})

	t.Run("unreadable file", func(t *testing.T) {
		code, stdout, stderr := run(filepath.Join(t.TempDir(), "missing.tex"))
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
		assert.Empty(t, stderr)
	})

	t.Run("directory", func(t *testing.T) {
		code, stdout, _ := run(t.TempDir())
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
	})

	t.Run("bad mode", func(t *testing.T) {
		path := writeFile(t, "fragment.tex", "1")
		code, stdout, stderr := run("--mode", "fuzzy", path)
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "unknown mode")
	})
}

func TestConfigFile(t *testing.T) {
	cfg := writeFile(t, "calc.yaml", "mode: numeric\ndecimal_places: 3\n")
	path := writeFile(t, "fragment.tex", `\frac{2}{3}`)

	code, stdout, _ := run("--config", cfg, path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "0.667", stdout)

	code, stdout, _ = run("--config", cfg, "--mode", "exact", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, `\frac{2}{3}`, stdout)

	bad := writeFile(t, "bad.yaml", "placeholder_tag: \"\"\n")
	code, _, stderr := run("--config", bad, path)
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestVerboseKeepsStdoutClean(t *testing.T) {
	path := writeFile(t, "fragment.tex", `1+1`)
	code, stdout, stderr := run("-v", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "2", stdout)
	assert.Contains(t, stderr, "sanitized")
	assert.Contains(t, stderr, "evaluated")

	path = writeFile(t, "broken.tex", `)(`)
	code, stdout, stderr = run("--verbose", path)
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no result")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), latexcalc.DefaultConfigFile)
	code, stdout, _ := run("init", path)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, path)

	cfg, err := latexcalc.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, latexcalc.DefaultConfig(), cfg)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}

func TestSubcommandNamedFile(t *testing.T) {
	tests := []struct {
		name string
		file string
		args []string
		want string
	}{
		{"init", "init", []string{"init"}, "2"},
		{"inspect", "inspect", []string{"inspect"}, "2"},
		{"with flags", "init", []string{"--mode", "numeric", "init"}, "2"},
		{"relative path", "init", []string{"./init"}, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			chdir(t, dir)
			require.NoError(t, os.WriteFile(tt.file, []byte(`$1+1$`), 0o644))

			code, stdout, _ := run(tt.args...)
			assert.Equal(t, 0, code)
			assert.Equal(t, tt.want, stdout)
			assert.NoFileExists(t, filepath.Join(dir, latexcalc.DefaultConfigFile))
		})
	}

	t.Run("init still writes config without such a file", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		code, stdout, _ := run("init")
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, latexcalc.DefaultConfigFile)
		assert.FileExists(t, filepath.Join(dir, latexcalc.DefaultConfigFile))
	})

	t.Run("explicit config path beside a file named init", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		require.NoError(t, os.WriteFile("init", []byte(`$1+1$`), 0o644))
		code, _, _ := run("init", latexcalc.DefaultConfigFile)
		assert.Equal(t, 0, code)
		assert.FileExists(t, filepath.Join(dir, latexcalc.DefaultConfigFile))
	})
}

func TestInspectCommand(t *testing.T) {
	color.NoColor = true

	t.Run("success", func(t *testing.T) {
		path := writeFile(t, "fragment.tex", `2\begin{pmatrix}1&2\end{pmatrix}`)
		code, stdout, _ := run("inspect", path)
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, "sanitized:\n  2\\begin{pmatrix}1&2\\end{pmatrix}\n")
		assert.Contains(t, stdout, `MATRIX0 = \begin{pmatrix}1 & 2\end{pmatrix}`)
		assert.Contains(t, stdout, "strategy:\n  grammar\n")
		assert.Contains(t, stdout, "result:\n  \\begin{pmatrix}2 & 4\\end{pmatrix}\n")
	})

	t.Run("failure", func(t *testing.T) {
		path := writeFile(t, "fragment.tex", `\begin{pmatrix}1\end{bmatrix}`)
		code, stdout, _ := run("inspect", path)
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, "error:")
		assert.Contains(t, stdout, latexcalc.ErrMatrixStructure.Error())
		assert.NotContains(t, stdout, "result:")
	})

	t.Run("missing file", func(t *testing.T) {
		code, stdout, _ := run("inspect", filepath.Join(t.TempDir(), "nope.tex"))
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("", nil)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	var buf bytes.Buffer
	logger, err = newLogger("info", &buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = newLogger("loud", &buf)
	assert.Error(t, err)
}
