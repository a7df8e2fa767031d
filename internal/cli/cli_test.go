package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/apperr"
	"github.com/starford/lumina/internal/notes"
	"github.com/starford/lumina/internal/testutil"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type stubGen struct {
	calls int
	text  string
	err   error
}

func (g *stubGen) Generate(context.Context, ai.Request) (string, error) {
	g.calls++
	return g.text, g.err
}

type fixture struct {
	runner *Runner
	store  *notes.Store
	gen    *stubGen
	out    *bytes.Buffer
}

func newFixture(t *testing.T, input string) *fixture {
	t.Helper()
	clock := testutil.NewClock(1_700_000_000_000)
	store, _ := testutil.TestStore(t, notes.WithClock(clock.Now))
	gen := &stubGen{text: "generated"}
	out := &bytes.Buffer{}
	r := New(store, ai.New(gen, ai.WithLogger(testutil.Logger())),
		WithInput(strings.NewReader(input)),
		WithOutput(out),
		WithClock(clock.Now),
	)
	return &fixture{runner: r, store: store, gen: gen, out: out}
}

func TestList(t *testing.T) {
	f := newFixture(t, "")
	if _, err := f.runner.Create("Groceries", "milk #shopping"); err != nil {
		t.Fatal(err)
	}
	f.out.Reset()

	if err := f.runner.List(""); err != nil {
		t.Fatal(err)
	}
	out := f.out.String()
	if !strings.Contains(out, "Groceries") || !strings.Contains(out, notes.WelcomeTitle) {
		t.Errorf("list output missing notes:\n%s", out)
	}
	if !strings.HasPrefix(out, "▶ ") {
		t.Errorf("newest note should be marked active:\n%s", out)
	}
	if strings.Index(out, "Groceries") > strings.Index(out, notes.WelcomeTitle) {
		t.Errorf("expected most recent first:\n%s", out)
	}
}

func TestList_Query(t *testing.T) {
	f := newFixture(t, "")
	f.runner.Create("Groceries", "milk")
	f.out.Reset()

	f.runner.List("GROC")
	if strings.Contains(f.out.String(), notes.WelcomeTitle) {
		t.Errorf("filtered list should not include the welcome note:\n%s", f.out)
	}

	f.out.Reset()
	f.runner.List("nothing-matches")
	if !strings.Contains(f.out.String(), `no notes match "nothing-matches"`) {
		t.Errorf("unexpected output: %q", f.out)
	}
}

func TestShow(t *testing.T) {
	f := newFixture(t, "")
	if err := f.runner.Show(notes.WelcomeID); err != nil {
		t.Fatal(err)
	}
	out := f.out.String()
	if !strings.Contains(out, notes.WelcomeTitle) || !strings.Contains(out, "tags: welcome") {
		t.Errorf("show output:\n%s", out)
	}

	err := f.runner.Show("missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t, "")
	n, err := f.runner.Create("Title", "Body")
	if err != nil {
		t.Fatal(err)
	}
	if n.Title != "Title" || n.Content != "Body" {
		t.Errorf("note = %+v", n)
	}
	if f.store.ActiveID() != n.ID {
		t.Error("new note should be active")
	}
	if !strings.Contains(f.out.String(), "created "+n.ID) {
		t.Errorf("output = %q", f.out)
	}
}

func TestCreate_Empty(t *testing.T) {
	f := newFixture(t, "")
	n, err := f.runner.Create("", "")
	if err != nil {
		t.Fatal(err)
	}
	if n.DisplayTitle() != "Untitled Note" {
		t.Errorf("title = %q", n.DisplayTitle())
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		yes         bool
		wantDeleted bool
	}{
		{"yes flag skips prompt", "", true, true},
		{"answer y", "y\n", false, true},
		{"answer YES", "YES\n", false, true},
		{"answer n", "n\n", false, false},
		{"empty answer", "\n", false, false},
		{"no input", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.input)
			deleted, err := f.runner.Delete(notes.WelcomeID, tt.yes)
			if err != nil {
				t.Fatal(err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v", deleted, tt.wantDeleted)
			}
			_, getErr := f.store.Get(notes.WelcomeID)
			if tt.wantDeleted == (getErr == nil) {
				t.Errorf("note presence mismatch, get err = %v", getErr)
			}
			prompted := strings.Contains(f.out.String(), notes.DeletePrompt)
			if prompted == tt.yes {
				t.Errorf("prompted = %v with yes = %v", prompted, tt.yes)
			}
		})
	}
}

func TestDelete_Unknown(t *testing.T) {
	f := newFixture(t, "y\n")
	_, err := f.runner.Delete("missing", false)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if strings.Contains(f.out.String(), notes.DeletePrompt) {
		t.Error("unknown id should not prompt")
	}
}

func TestTransform(t *testing.T) {
	f := newFixture(t, "")
	f.gen.text = "- point one"

	text, err := f.runner.Transform(context.Background(), notes.WelcomeID, "summarize", false)
	if err != nil {
		t.Fatal(err)
	}
	if text != "- point one" {
		t.Errorf("text = %q", text)
	}
	n, _ := f.store.Get(notes.WelcomeID)
	if n.Content != notes.WelcomeBody {
		t.Error("transform without apply must not change the note")
	}
}

func TestTransform_Apply(t *testing.T) {
	f := newFixture(t, "")
	f.gen.text = "Simpler."

	if _, err := f.runner.Transform(context.Background(), notes.WelcomeID, "simplify", true); err != nil {
		t.Fatal(err)
	}
	n, _ := f.store.Get(notes.WelcomeID)
	if want := notes.WelcomeBody + notes.ResultSeparator + "Simpler."; n.Content != want {
		t.Errorf("content = %q", n.Content)
	}
	if !strings.Contains(f.out.String(), "result added to note") {
		t.Errorf("output = %q", f.out)
	}
}

func TestTransform_FallbackNotApplied(t *testing.T) {
	f := newFixture(t, "")
	f.gen.err = errors.New("quota exceeded")

	text, err := f.runner.Transform(context.Background(), notes.WelcomeID, "brainstorm", true)
	if !errors.Is(err, ErrNotApplied) {
		t.Fatalf("err = %v, want ErrNotApplied", err)
	}
	if text != ai.MsgFailed {
		t.Errorf("text = %q, want %q", text, ai.MsgFailed)
	}
	n, _ := f.store.Get(notes.WelcomeID)
	if n.Content != notes.WelcomeBody {
		t.Error("fallback text must not be appended")
	}
}

func TestTransform_Errors(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	if _, err := f.runner.Transform(ctx, notes.WelcomeID, "translate", false); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad action err = %v, want ErrInvalid", err)
	}
	if _, err := f.runner.Transform(ctx, "missing", "summarize", false); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing note err = %v, want ErrNotFound", err)
	}
	if f.gen.calls != 0 {
		t.Errorf("generator called %d times", f.gen.calls)
	}
}

func TestImport(t *testing.T) {
	f := newFixture(t, "")
	dir := t.TempDir()
	withFM := filepath.Join(dir, "meeting.md")
	plain := filepath.Join(dir, "scratch.md")
	os.WriteFile(withFM, []byte("---\ntitle: Weekly sync\ntags: [work]\n---\nDiscussed #roadmap\n"), 0o644)
	os.WriteFile(plain, []byte("just text\n"), 0o644)

	n, err := f.runner.Import(withFM, plain)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("imported = %d, want 2", n)
	}
	if f.store.Len() != 3 {
		t.Errorf("len = %d, want 3", f.store.Len())
	}

	var found bool
	for _, note := range f.store.All() {
		if note.Title == "Weekly sync" {
			found = true
			if !slices.Contains(note.Tags, "work") || !slices.Contains(note.Tags, "roadmap") {
				t.Errorf("tags = %v", note.Tags)
			}
			if note.Content != "Discussed #roadmap" {
				t.Errorf("content = %q", note.Content)
			}
		}
	}
	if !found {
		t.Error("frontmatter title not used")
	}
	if len(f.store.Filter("scratch")) != 1 {
		t.Error("file name should become the title when none is given")
	}
}

func TestImport_MissingFile(t *testing.T) {
	f := newFixture(t, "")
	good := filepath.Join(t.TempDir(), "good.md")
	os.WriteFile(good, []byte("# Good\n"), 0o644)

	n, err := f.runner.Import(filepath.Join(t.TempDir(), "nope.md"), good)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if n != 1 {
		t.Errorf("imported = %d, want 1", n)
	}
	if !strings.Contains(f.out.String(), "skip ") {
		t.Errorf("output = %q", f.out)
	}
}

func TestImport_NoFiles(t *testing.T) {
	f := newFixture(t, "")
	if _, err := f.runner.Import(); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}
