// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dax

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/hashrock/dax/expand"
)

func TestSpawnEcho(t *testing.T) {
	c := qt.New(t)
	out, err := New().Command("echo 5").Text(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "5")
}

func TestTextLinesBytes(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	lines, err := New().Command("echo a; echo b").Lines(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(lines, qt.DeepEquals, []string{"a", "b"})

	b, err := New().Command("echo hi").Bytes(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "hi\n")
}

func TestJSONDecoding(t *testing.T) {
	c := qt.New(t)
	var v struct {
		A int `json:"a"`
	}
	err := New().Command(`echo '{"a":7}'`).JSON(context.Background(), &v)
	c.Assert(err, qt.IsNil)
	c.Assert(v.A, qt.Equals, 7)
}

func TestExitErrorPropagation(t *testing.T) {
	c := qt.New(t)
	_, err := New().Command("exit 3").Spawn(context.Background())
	var exitErr *ExitError
	c.Assert(errors.As(err, &exitErr), qt.IsTrue)
	c.Assert(exitErr.Code, qt.Equals, uint8(3))
}

func TestNoThrowSuppressesAllCodes(t *testing.T) {
	c := qt.New(t)
	res, err := New().Command("exit 9").NoThrow().Spawn(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(res.Code, qt.Equals, uint8(9))
}

func TestNoThrowSpecificCodesOnly(t *testing.T) {
	c := qt.New(t)
	_, err := New().Command("exit 9").NoThrow(1, 2).Spawn(context.Background())
	var exitErr *ExitError
	c.Assert(errors.As(err, &exitErr), qt.IsTrue)

	res, err := New().Command("exit 2").NoThrow(1, 2).Spawn(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(res.Code, qt.Equals, uint8(2))
}

func TestNoThrowWithNoCodesWidensPastEarlierSpecificCodes(t *testing.T) {
	c := qt.New(t)
	b := New().Command("exit 9").NoThrow(1, 2).NoThrow()
	res, err := b.Spawn(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(res.Code, qt.Equals, uint8(9))
}

func TestTimeoutYieldsTimedOutResult(t *testing.T) {
	c := qt.New(t)
	start := time.Now()
	res, err := New().Command("sleep 10s").Timeout("50ms").NoThrow().Spawn(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(res.TimedOut, qt.IsTrue)
	c.Assert(res.Code, qt.Equals, uint8(124))
	c.Assert(time.Since(start) < 200*time.Millisecond, qt.IsTrue)
}

func TestCwdScopesRelativePaths(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "f.txt"), []byte("hey"), 0o644), qt.IsNil)

	out, err := New().Cwd(dir).Command("cat f.txt").Text(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "hey")
}

func TestEnvOverridesVisibleToCommand(t *testing.T) {
	c := qt.New(t)
	out, err := New().Env("FOO", "bar").Command("echo $FOO").Text(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "bar")
}

func TestExportEnvAppliesToHostProcess(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	old, err := os.Getwd()
	c.Assert(err, qt.IsNil)
	defer os.Chdir(old)
	os.Unsetenv("DAX_EXPORT_TEST")

	_, err = New().Cwd(dir).Command("export DAX_EXPORT_TEST=abc").ExportEnv(true).Spawn(context.Background())
	c.Assert(err, qt.IsNil)

	got, err := os.Getwd()
	c.Assert(err, qt.IsNil)
	resolved, _ := filepath.EvalSymlinks(dir)
	gotResolved, _ := filepath.EvalSymlinks(got)
	c.Assert(gotResolved, qt.Equals, resolved)
	c.Assert(os.Getenv("DAX_EXPORT_TEST"), qt.Equals, "abc")
}

func TestExportEnvNotAppliedOnFailure(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	old, err := os.Getwd()
	c.Assert(err, qt.IsNil)
	defer os.Chdir(old)
	os.Unsetenv("DAX_EXPORT_FAIL_TEST")

	_, err = New().Cwd(dir).Command("export DAX_EXPORT_FAIL_TEST=abc && exit 1").ExportEnv(true).Spawn(context.Background())
	var exitErr *ExitError
	c.Assert(errors.As(err, &exitErr), qt.IsTrue)

	got, err := os.Getwd()
	c.Assert(err, qt.IsNil)
	resolvedOld, _ := filepath.EvalSymlinks(old)
	gotResolved, _ := filepath.EvalSymlinks(got)
	c.Assert(gotResolved, qt.Equals, resolvedOld, qt.Commentf("host cwd must not change when the command's final code is non-zero"))
	c.Assert(os.Getenv("DAX_EXPORT_FAIL_TEST"), qt.Equals, "", qt.Commentf("host env must not change when the command's final code is non-zero"))
}

func TestQuoteArgSafeCharsUnquoted(t *testing.T) {
	c := qt.New(t)
	for _, s := range []string{"abc", "a-b_c.d/e:f=g+h@i%j^k", "123"} {
		c.Assert(QuoteArg(s), qt.Equals, s)
	}
}

func TestQuoteArgRoundTripsThroughEcho(t *testing.T) {
	c := qt.New(t)
	inputs := []string{"hello world", "it's", "a'b'c", "$HOME `cmd`", ""}
	for _, s := range inputs {
		src := "echo " + QuoteArg(s)
		out, err := New().Command(src).Text(context.Background())
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Equals, s, qt.Commentf("input=%q", s))
	}
}

func TestCommandTemplateQuotesByDefault(t *testing.T) {
	c := qt.New(t)
	src, err := CommandTemplate(false, []string{"echo ", ""}, "a b")
	c.Assert(err, qt.IsNil)
	c.Assert(src, qt.Equals, "echo 'a b'")

	out, err := New().Command(src).Text(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "a b")
}

func TestCommandTemplateRawArraySpaceJoins(t *testing.T) {
	c := qt.New(t)
	src, err := CommandTemplate(true, []string{"echo ", ""}, []string{"a", "b", "c"})
	c.Assert(err, qt.IsNil)
	c.Assert(src, qt.Equals, "echo a b c")
}

func TestCommandTemplateMismatchedArgsErrors(t *testing.T) {
	c := qt.New(t)
	_, err := CommandTemplate(false, []string{"a", "b", "c"}, "only one")
	c.Assert(err, qt.ErrorMatches, ".*len\\(parts\\).*")
}

func TestStdinUnsupportedTypeSurfacesUserError(t *testing.T) {
	c := qt.New(t)
	_, err := New().Stdin(42).Command("cat").Spawn(context.Background())
	var userErr *UserError
	c.Assert(errors.As(err, &userErr), qt.IsTrue)

	_, err = New().Stdin(42).Command("cat").NoThrow().Spawn(context.Background())
	c.Assert(errors.As(err, &userErr), qt.IsTrue, qt.Commentf("NoThrow must not suppress builder API misuse"))
}

func TestTimeoutInvalidDurationSurfacesUserError(t *testing.T) {
	c := qt.New(t)
	_, err := New().Timeout("not a duration").Command("echo hi").Spawn(context.Background())
	var userErr *UserError
	c.Assert(errors.As(err, &userErr), qt.IsTrue)

	_, err = New().Timeout("not a duration").Command("echo hi").NoThrow().Spawn(context.Background())
	c.Assert(errors.As(err, &userErr), qt.IsTrue, qt.Commentf("NoThrow must not suppress builder API misuse"))
}

func TestCorrectiveMutatorCallClearsOnlyItsOwnError(t *testing.T) {
	c := qt.New(t)

	// A later valid Stdin call clears the earlier invalid one.
	out, err := New().Stdin(42).Stdin("hi").Command("cat").Text(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "hi")

	// A later valid Timeout call clears the earlier invalid one.
	out, err = New().Timeout("bogus").Timeout("1s").Command("echo ok").Text(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "ok")

	// An invalid Timeout call must still surface even after a valid Stdin
	// call elsewhere in the same chain.
	var userErr *UserError
	_, err = New().Stdin("hi").Timeout("bogus").Command("cat").Spawn(context.Background())
	c.Assert(errors.As(err, &userErr), qt.IsTrue)
}

func TestRegisterCommandRunsCustomCommand(t *testing.T) {
	c := qt.New(t)
	greet := func(_ context.Context, args []string, _ expand.Environ, _ string, _ io.Reader, stdout, _ io.Writer) uint8 {
		stdout.Write([]byte("hi " + args[1] + "\n"))
		return 0
	}
	out, err := New().RegisterCommand("greet", greet).Command("greet world").Text(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "hi world")
}

func TestRegisterCommandsMerges(t *testing.T) {
	c := qt.New(t)
	noop := func(context.Context, []string, expand.Environ, string, io.Reader, io.Writer, io.Writer) uint8 { return 0 }
	b := New().RegisterCommands(map[string]CustomCommandFunc{"a": noop, "b": noop})
	b2 := b.RegisterCommand("c", noop)
	c.Assert(len(b.custom), qt.Equals, 2)
	c.Assert(len(b2.custom), qt.Equals, 3)
}
