package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/config"
	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/tagstore/tagstoretest"
)

type cliTestEnv struct {
	base       string
	configPath string
	stateDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		base:       base,
		configPath: filepath.Join(base, "config", "config.toml"),
		stateDir:   filepath.Join(base, "state"),
	}
	for _, key := range []string{"AUDIOTAG_FFMPEG", "AUDIOTAG_LOG_LEVEL", "AUDIOTAG_BITRATE"} {
		t.Setenv(key, "")
	}
	t.Setenv("AUDIOTAG_STATE_DIR", env.stateDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "xdg"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(base); err != nil {
		t.Fatal(err)
	}
	return env
}

// execute runs the CLI with --config pointing into the test env.
func (env *cliTestEnv) execute(t *testing.T, enc codec.Encoder, args ...string) (int, string, string) {
	t.Helper()
	return env.executeContext(t, context.Background(), enc, args...)
}

func (env *cliTestEnv) executeContext(t *testing.T, ctx context.Context, enc codec.Encoder, args ...string) (int, string, string) {
	t.Helper()
	cc := newCommandContext()
	if enc != nil {
		cc.newEncoder = func(*config.Settings) codec.Encoder { return enc }
	}
	var stdout, stderr bytes.Buffer
	code := run(ctx, cc, append([]string{"--config", env.configPath}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// placeholderEncoder writes the fixture payload, failing for names in fail.
func placeholderEncoder(fail ...string) codec.Encoder {
	return codec.EncoderFunc(func(_ context.Context, req codec.Request) error {
		for _, name := range fail {
			if filepath.Base(req.Source) == name {
				return errors.New("lame: broken stream")
			}
		}
		return os.WriteFile(req.Output, tagstoretest.Payload, 0644)
	})
}

func flacAlbum(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		tagstoretest.WriteFLAC(t, filepath.Join(dir, name), map[string]string{
			model.FieldArtist: "Cocteau Twins",
			model.FieldTitle:  strings.TrimSuffix(name, ".flac"),
		})
	}
}

func TestRun_ExitCodes(t *testing.T) {
	env := setupCLITestEnv(t)

	if code, _, _ := env.execute(t, nil, "--help"); code != exitOK {
		t.Errorf("--help exit = %d", code)
	}
	code, _, stderr := env.execute(t, nil, "scan", filepath.Join(env.base, "missing"))
	if code != exitError || !strings.Contains(stderr, "invalid path") {
		t.Errorf("missing root: exit %d, stderr %q", code, stderr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, _, stderr = env.executeContext(t, ctx, nil, "scan", env.base)
	if code != exitInterrupted || !strings.Contains(stderr, "Interrupted") {
		t.Errorf("canceled: exit %d, stderr %q", code, stderr)
	}
}

func TestFormat_Stdout(t *testing.T) {
	env := setupCLITestEnv(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"aor, pop"}, "AOR|Pop"},
		{[]string{"Rock/Indie", "-o", "/", "-n", "; ", "-c", "upper"}, "ROCK; INDIE"},
		{[]string{"  a ,b", "-c", "none"}, "a|b"},
	}
	for _, tt := range tests {
		code, stdout, stderr := env.execute(t, nil, append([]string{"format", "--stdout"}, tt.args...)...)
		if code != exitOK {
			t.Errorf("format %v: exit %d, stderr %q", tt.args, code, stderr)
			continue
		}
		if got := strings.TrimSpace(stdout); got != tt.want {
			t.Errorf("format %v = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestScan_OutputFile(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.base, "library")
	flacAlbum(t, filepath.Join(root, "Treasure"), "01.flac")
	flacAlbum(t, filepath.Join(root, ".hidden"), "01.flac")
	list := filepath.Join(env.base, "dirs.txt")

	code, stdout, stderr := env.execute(t, nil, "scan", root, "-s", "-o", list)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("silent scan printed %q", stdout)
	}
	data, err := os.ReadFile(list)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != filepath.Join(root, "Treasure") {
		t.Errorf("list = %q", got)
	}

	if code, _, _ := env.execute(t, nil, "scan", root, "-o", list); code != exitError {
		t.Errorf("existing output file: exit %d, want %d", code, exitError)
	}
}

func TestConfig_InitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	code, stdout, stderr := env.execute(t, nil, "config", "init")
	if code != exitOK || !strings.Contains(stdout, env.configPath) {
		t.Fatalf("init: exit %d, stdout %q, stderr %q", code, stdout, stderr)
	}
	if code, _, _ := env.execute(t, nil, "config", "init"); code != exitError {
		t.Errorf("second init exit = %d", code)
	}
	if code, _, _ := env.execute(t, nil, "config", "init", "--overwrite"); code != exitOK {
		t.Errorf("init --overwrite exit = %d", code)
	}

	code, stdout, _ = env.execute(t, nil, "config", "show")
	if code != exitOK {
		t.Fatalf("show exit = %d", code)
	}
	for _, want := range []string{"[convert]", "bitrate = 256", env.stateDir} {
		if !strings.Contains(stdout, want) {
			t.Errorf("show output missing %q:\n%s", want, stdout)
		}
	}
}

func TestConvert_RecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.base, "library")
	album := filepath.Join(root, "Heaven or Las Vegas")
	flacAlbum(t, album, "01.flac", "02.flac")

	code, stdout, stderr := env.execute(t, placeholderEncoder(), "convert", root, "-i")
	if code != exitOK {
		t.Fatalf("convert: exit %d\nstdout %s\nstderr %s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "Heaven or Las Vegas") {
		t.Errorf("no result table:\n%s", stdout)
	}
	for _, p := range []string{
		filepath.Join(album, "01.mp3"),
		filepath.Join(root, ".Heaven or Las Vegas", "01.flac"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s", p)
		}
	}

	code, stdout, _ = env.execute(t, nil, "history")
	if code != exitOK || !strings.Contains(stdout, "convert") || !strings.Contains(stdout, "succeeded") {
		t.Errorf("history: exit %d\n%s", code, stdout)
	}
}

func TestConvert_DegradedFails(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.base, "library")
	album := filepath.Join(root, "Garlands")
	flacAlbum(t, album, "01.flac", "02.flac")

	code, _, stderr := env.execute(t, placeholderEncoder("02.flac"), "convert", root, "-d", "--policy", "skip")
	if code != exitError || !strings.Contains(stderr, "could not be converted") {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(album, "02.flac")); err != nil {
		t.Errorf("original removed from degraded directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(album+" (converted)", "01.mp3")); err != nil {
		t.Errorf("staging not kept: %v", err)
	}

	code, stdout, _ := env.execute(t, nil, "history")
	if code != exitOK || !strings.Contains(stdout, "degraded") {
		t.Errorf("history:\n%s", stdout)
	}
}

func TestConvert_InvalidPolicy(t *testing.T) {
	env := setupCLITestEnv(t)
	code, _, stderr := env.execute(t, placeholderEncoder(), "convert", env.base, "--policy", "retry")
	if code != exitError || !strings.Contains(stderr, "failure_policy") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestTags_FormatsGenres(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.base, "mp3")
	track := filepath.Join(root, "Album", "01.mp3")
	tagstoretest.WriteMP3(t, track, map[string]string{
		model.FieldArtist: "Cocteau Twins/Harold Budd",
		model.FieldGenre:  "aor/pop",
	})

	code, stdout, stderr := env.execute(t, nil, "tags", root)
	if code != exitOK {
		t.Fatalf("exit %d\n%s\n%s", code, stdout, stderr)
	}
	if got, _ := tagstoretest.ReadID3(t, track, "TCON"); got != "AOR|Pop" {
		t.Errorf("genre = %q, want %q", got, "AOR|Pop")
	}
	if got, _ := tagstoretest.ReadID3(t, track, "TPE1"); got != "Cocteau Twins|Harold Budd" {
		t.Errorf("artist = %q", got)
	}
}

func TestTags_CommaDelimiterRejected(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.base, "mp3")
	tagstoretest.WriteMP3(t, filepath.Join(root, "Album", "01.mp3"), map[string]string{model.FieldArtist: "A/B"})

	code, _, stderr := env.execute(t, nil, "tag", "artist", filepath.Join(root, "Album"), "-n", ",")
	if code != exitError || !strings.Contains(stderr, "delimiter") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestCover_WritesFolderJPEG(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.base, "scan.png")
	if err := os.WriteFile(src, tagstoretest.PNG(t), 0644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := env.execute(t, nil, "cover", src, "-w", "2")
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	dst := filepath.Join(env.base, "folder.jpg")
	if !strings.Contains(stdout, dst) {
		t.Errorf("stdout = %q", stdout)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		t.Error("output is not a JPEG")
	}
}

func TestHistory_UnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)
	code, stdout, _ := env.execute(t, nil, "history")
	if code != exitOK || !strings.Contains(stdout, "No runs recorded") {
		t.Errorf("empty history: exit %d, %q", code, stdout)
	}
	code, _, stderr := env.execute(t, nil, "history", "deadbeef")
	if code != exitError || !strings.Contains(stderr, "run not found") {
		t.Errorf("unknown run: exit %d, %q", code, stderr)
	}
}
