package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/you-not-fish/scl/internal/interchange"
	"github.com/you-not-fish/scl/internal/logging"
	"github.com/you-not-fish/scl/internal/server"
)

const sampleSrc = `// sum the numbers below five
int x = 2;
int y = x * 3;
while (x < 5) {
	x = x + 1;
}
`

func TestTokensTable(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", "int x = 2 + 3;\n")

	code, out, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "tokens", filename})
	})
	if code != exitOK {
		t.Fatalf("tokens exit=%d\nstderr:\n%s", code, errOut)
	}
	if errOut != "" {
		t.Fatalf("unexpected stderr:\n%s", errOut)
	}
	for _, want := range []string{"POS", "KEYWORD", "1:1", "IDENTIFIER", "1:13", "7 tokens"} {
		if !strings.Contains(out, want) {
			t.Errorf("token table missing %q:\n%s", want, out)
		}
	}
}

func TestTokensSaveAndParseFromTokens(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", sampleSrc)

	code, _, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "tokens", "--save", "--format", "json", filename})
	})
	if code != exitOK {
		t.Fatalf("tokens exit=%d\nstderr:\n%s", code, errOut)
	}
	tokensFile := interchange.TokensPath(filename)
	f, err := os.Open(tokensFile)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	toks, err := interchange.DecodeTokens(f, interchange.JSON, tokensFile)
	f.Close()
	if err != nil {
		t.Fatalf("decode saved tokens: %v", err)
	}
	if len(toks) != 26 {
		t.Errorf("saved %d tokens, want 26", len(toks))
	}

	code, out, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "parse", "--from-tokens", "--save", tokensFile})
	})
	if code != exitOK {
		t.Fatalf("parse exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "While ") {
		t.Errorf("tree missing while statement:\n%s", out)
	}
	treeFile := strings.TrimSuffix(filename, ".scl") + "_parse_tree.json"
	if _, err := os.Stat(treeFile); err != nil {
		t.Errorf("tree file not written: %v", err)
	}
}

func TestTokensLexicalError(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "bad.scl", "int x = 1 @ 2;\n")

	code, _, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "tokens", filename})
	})
	if code != exitFailed {
		t.Fatalf("tokens exit=%d, want %d", code, exitFailed)
	}
	if !strings.Contains(errOut, filename+":1:11: LexicalError") {
		t.Errorf("stderr missing lexical error:\n%s", errOut)
	}
}

func TestParseFormats(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", sampleSrc)

	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"Program " + filename + ":2:1", "Declaration", "While "}},
		{"json", []string{`"type": "Program"`, `"op": "*"`}},
		{"yaml", []string{"type: Program", "name: x"}},
		{"list", []string{`"PROGRAM"`, `"DECLARATION_INIT"`, `"WHILE"`, `"RELOP"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			code, out, errOut := captureOutput(t, func() int {
				return run([]string{"--config", cfg, "parse", "--format", tt.format, filename})
			})
			if code != exitOK {
				t.Fatalf("parse exit=%d\nstderr:\n%s", code, errOut)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestParseOutputFile(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", sampleSrc)
	outFile := filepath.Join(t.TempDir(), "tree.json")

	code, out, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "parse", "-f", "list", "-o", outFile, filename})
	})
	if code != exitOK {
		t.Fatalf("parse exit=%d\nstderr:\n%s", code, errOut)
	}
	if out != "" {
		t.Errorf("stdout should be empty with -o, got:\n%s", out)
	}
	f, err := os.Open(outFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	prog, err := interchange.DecodeTree(f, interchange.List)
	if err != nil {
		t.Fatalf("decode list tree: %v", err)
	}
	if len(prog.Stmts) != 3 {
		t.Errorf("got %d statements, want 3", len(prog.Stmts))
	}
}

func TestParseErrors(t *testing.T) {
	cfg := writeTestConfig(t)

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "int x = ;\n", "SyntaxError"},
		{"duplicate", "int x; int x;\n", "DuplicateDeclaration"},
		{"undeclared", "y = 1;\n", "UndeclaredVariable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := writeTempSCLFile(t, tt.name+".scl", tt.src)
			code, _, errOut := captureOutput(t, func() int {
				return run([]string{"--config", cfg, "parse", filename})
			})
			if code != exitFailed {
				t.Fatalf("parse exit=%d, want %d\nstderr:\n%s", code, exitFailed, errOut)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr missing %s:\n%s", tt.want, errOut)
			}
		})
	}
}

func TestParseKeepGoing(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "lex.scl", "int x = 1; @\nint y = 2;\n")

	code, out, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "parse", filename})
	})
	if code != exitFailed {
		t.Fatalf("parse exit=%d, want %d", code, exitFailed)
	}
	if out != "" {
		t.Errorf("tree printed despite lexical error:\n%s", out)
	}
	if !strings.Contains(errOut, "LexicalError") {
		t.Errorf("stderr missing lexical error:\n%s", errOut)
	}

	code, out, errOut = captureOutput(t, func() int {
		return run([]string{"--config", cfg, "--keep-going", "parse", filename})
	})
	if code != exitOK {
		t.Fatalf("parse --keep-going exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "Declaration "+filename+":2:1 int y") {
		t.Errorf("tree missing second declaration:\n%s", out)
	}
	if !strings.Contains(errOut, "LexicalError") {
		t.Errorf("lexical error not reported:\n%s", errOut)
	}
}

func TestRun(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", sampleSrc)

	code, out, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "run", filename})
	})
	if code != exitOK {
		t.Fatalf("run exit=%d\nstderr:\n%s", code, errOut)
	}
	if out != "x = 5\ny = 6\n" {
		t.Errorf("memory = %q, want %q", out, "x = 5\ny = 6\n")
	}
}

func TestRunTrace(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", "int x = 1;\nx = x + 1;\n")

	code, _, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "run", "--trace", filename})
	})
	if code != exitOK {
		t.Fatalf("run exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, want := range []string{filename + ":1:1: declare x = 1", filename + ":2:1: x = 2"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("trace missing %q:\n%s", want, errOut)
		}
	}
}

func TestRunErrors(t *testing.T) {
	cfg := writeTestConfig(t)

	tests := []struct {
		name string
		args []string
		src  string
		code int
		want string
	}{
		{"div_zero", nil, "int x = 1;\nint y = x / 0;\n", exitFailed, "runtime error: division by zero"},
		{"step_limit", []string{"--max-steps", "10"}, "int x;\nwhile (x < 1) { }\n", exitFailed, "step budget of 10 exhausted"},
		{"syntax", nil, "int x = 1\n", exitFailed, "SyntaxError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := writeTempSCLFile(t, tt.name+".scl", tt.src)
			args := append([]string{"--config", cfg, "run"}, tt.args...)
			args = append(args, filename)
			code, out, errOut := captureOutput(t, func() int {
				return run(args)
			})
			if code != tt.code {
				t.Fatalf("run exit=%d, want %d\nstderr:\n%s", code, tt.code, errOut)
			}
			if out != "" {
				t.Errorf("unexpected stdout:\n%s", out)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr missing %q:\n%s", tt.want, errOut)
			}
		})
	}
}

func TestRunFromTree(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", sampleSrc)

	for _, format := range []string{"json", "list"} {
		t.Run(format, func(t *testing.T) {
			treeFile := filepath.Join(t.TempDir(), "tree.json")
			code, _, errOut := captureOutput(t, func() int {
				return run([]string{"--config", cfg, "parse", "-f", format, "-o", treeFile, filename})
			})
			if code != exitOK {
				t.Fatalf("parse exit=%d\nstderr:\n%s", code, errOut)
			}

			code, out, errOut := captureOutput(t, func() int {
				return run([]string{"--config", cfg, "run", "--from-tree", treeFile})
			})
			if code != exitOK {
				t.Fatalf("run exit=%d\nstderr:\n%s", code, errOut)
			}
			if out != "x = 5\ny = 6\n" {
				t.Errorf("memory = %q", out)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	cfg := writeTestConfig(t)
	good := writeTempSCLFile(t, "good.scl", "int x = 1;\n")
	bad := writeTempSCLFile(t, "bad.scl", "int x = ;\nint y; int y;\n")

	code, out, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "check", "-j", "2", "-v", good, bad, good})
	})
	if code != exitFailed {
		t.Fatalf("check exit=%d, want %d\nstderr:\n%s", code, exitFailed, errOut)
	}
	want := fmt.Sprintf("%s: ok (5 tokens)\n%s: 2 errors\n%s: ok (5 tokens)\n", good, bad, good)
	if out != want {
		t.Errorf("summary:\n%s\nwant:\n%s", out, want)
	}
	if !strings.Contains(errOut, "DuplicateDeclaration") {
		t.Errorf("verbose diagnostics missing:\n%s", errOut)
	}
}

func TestCheckUnreadable(t *testing.T) {
	cfg := writeTestConfig(t)
	good := writeTempSCLFile(t, "good.scl", "int x = 1;\n")
	missing := filepath.Join(t.TempDir(), "missing.scl")

	code, out, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "check", good, missing})
	})
	if code != exitUsage {
		t.Fatalf("check exit=%d, want %d", code, exitUsage)
	}
	if !strings.Contains(out, good+": ok") {
		t.Errorf("good file not summarized:\n%s", out)
	}
	if !strings.Contains(errOut, "1 of 2 files could not be read") {
		t.Errorf("stderr:\n%s", errOut)
	}
}

func TestHistoryAndShow(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", sampleSrc)

	code, out, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "run", "--record", filename})
	})
	if code != exitOK {
		t.Fatalf("run exit=%d\nstderr:\n%s", code, errOut)
	}
	if out != "x = 5\ny = 6\n" {
		t.Errorf("memory = %q", out)
	}
	id := recordedID(t, errOut)

	code, out, errOut = captureOutput(t, func() int {
		return run([]string{"--config", cfg, "history"})
	})
	if code != exitOK {
		t.Fatalf("history exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, id[:8]) || !strings.Contains(out, filename) {
		t.Errorf("history missing run %s:\n%s", id, out)
	}

	code, out, errOut = captureOutput(t, func() int {
		return run([]string{"--config", cfg, "show", id[:8]})
	})
	if code != exitOK {
		t.Fatalf("show exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, want := range []string{"id:      " + id, "path:    " + filename, "tokens:  26", "tree:", "While ", "memory:", "x = 5"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	code, out, _ = captureOutput(t, func() int {
		return run([]string{"--config", cfg, "show", "--section", "memory", id})
	})
	if code != exitOK || out != "x = 5\ny = 6\n" {
		t.Errorf("show memory exit=%d out=%q", code, out)
	}

	code, _, errOut = captureOutput(t, func() int {
		return run([]string{"--config", cfg, "show", "ffffffff-nope"})
	})
	if code != exitUsage || !strings.Contains(errOut, "run not found") {
		t.Errorf("show unknown id exit=%d stderr=%q", code, errOut)
	}
}

func TestHistoryEmpty(t *testing.T) {
	cfg := writeTestConfig(t)
	code, out, _ := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "history"})
	})
	if code != exitOK || out != "no runs recorded\n" {
		t.Errorf("history exit=%d out=%q", code, out)
	}
}

func TestRemote(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", sampleSrc)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := server.New(server.Config{Logger: logging.Discard()})
	go srv.Serve(lis)
	defer srv.Shutdown(context.Background())
	addr := lis.Addr().String()

	code, out, errOut := captureOutput(t, func() int {
		return run([]string{"--config", cfg, "remote", "parse", "--addr", addr, filename})
	})
	if code != exitOK {
		t.Fatalf("remote parse exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "Program ") || !strings.Contains(out, "While ") {
		t.Errorf("remote tree:\n%s", out)
	}

	code, out, errOut = captureOutput(t, func() int {
		return run([]string{"--config", cfg, "remote", "health", "--addr", addr})
	})
	if code != exitOK || out != addr+": serving\n" {
		t.Errorf("remote health exit=%d out=%q stderr=%q", code, out, errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	cfg := writeTestConfig(t)
	filename := writeTempSCLFile(t, "prog.scl", sampleSrc)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown_command", []string{"compile", filename}, "unknown command"},
		{"missing_file_arg", []string{"tokens"}, "accepts 1 arg"},
		{"bad_format", []string{"parse", "--format", "xml", filename}, "unknown format"},
		{"missing_file", []string{"parse", filename + ".nope"}, "no such file or directory"},
		{"bad_config", []string{"--log-level", "loud", "tokens", filename}, "log.level"},
		{"watch_missing_dir", []string{"watch", filepath.Join(t.TempDir(), "no", "such.scl")}, "failed to watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg}, tt.args...)
			code, _, errOut := captureOutput(t, func() int {
				return run(args)
			})
			if code != exitUsage {
				t.Fatalf("exit=%d, want %d\nstderr:\n%s", code, exitUsage, errOut)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr missing %q:\n%s", tt.want, errOut)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := captureOutput(t, func() int {
		return run([]string{"version"})
	})
	if code != exitOK {
		t.Fatalf("version exit=%d", code)
	}
	if !strings.HasPrefix(out, "sclc version "+Version+"\n") {
		t.Errorf("version output:\n%s", out)
	}
}

// writeTestConfig writes a config that keeps the history database in a
// temporary directory and the output plain.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sclc.toml")
	content := fmt.Sprintf(`[log]
level = "error"

[store]
path = %q

[output]
no_color = true
`, filepath.Join(dir, "runs.db"))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func writeTempSCLFile(t *testing.T, name, src string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filename, []byte(src), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return filename
}

func recordedID(t *testing.T, stderr string) string {
	t.Helper()
	for _, line := range strings.Split(stderr, "\n") {
		if id, ok := strings.CutPrefix(line, "recorded run "); ok {
			return id
		}
	}
	t.Fatalf("no recorded run in stderr:\n%s", stderr)
	return ""
}

func captureOutput(t *testing.T, fn func() int) (code int, stdout string, stderr string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdout: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stderr: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code = fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	outBytes, _ := io.ReadAll(rOut)
	errBytes, _ := io.ReadAll(rErr)
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}
