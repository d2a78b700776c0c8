package repro

import (
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/databill86/dvc/internal/config"
	"github.com/databill86/dvc/internal/dataitem"
	"github.com/databill86/dvc/internal/logging"
	"github.com/databill86/dvc/internal/state"
	"github.com/databill86/dvc/internal/testutil"
)

// fakeGit is an in-memory version-control collaborator. Change
// detection is driven by the changed set, keyed by artifact path.
type fakeGit struct {
	ready        bool
	changed      map[string]bool
	checked      []string // artifacts FilesChanged was asked about, in order
	commits      []string
	commitErr    error
	filesChanged func(artifact string, codeDeps []string) (bool, error)
}

func newFakeGit() *fakeGit {
	return &fakeGit{ready: true, changed: map[string]bool{}}
}

func (g *fakeGit) IsReady() (bool, error) { return g.ready, nil }

func (g *fakeGit) FilesChanged(artifact string, codeDeps []string) (bool, error) {
	g.checked = append(g.checked, artifact)
	if g.filesChanged != nil {
		return g.filesChanged(artifact, codeDeps)
	}
	return g.changed[artifact], nil
}

func (g *fakeGit) Commit(message string) error {
	if g.commitErr != nil {
		return g.commitErr
	}
	g.commits = append(g.commits, message)
	return nil
}

// fakeRunner records executed commands and can be told to fail.
type fakeRunner struct {
	runs [][]string
	fail map[string]error // keyed by joined argv
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{fail: map[string]error{}}
}

func (r *fakeRunner) Execute(argv []string) error {
	r.runs = append(r.runs, append([]string(nil), argv...))
	if err := r.fail[strings.Join(argv, " ")]; err != nil {
		return err
	}
	return nil
}

func (r *fakeRunner) ran(target string) int {
	count := 0
	for _, argv := range r.runs {
		for _, tok := range argv {
			if tok == target {
				count++
			}
		}
	}
	return count
}

type harness struct {
	root    string
	factory *dataitem.PathFactory
	git     *fakeGit
	runner  *fakeRunner
	env     Env
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root := t.TempDir()
	factory := dataitem.NewPathFactory(root, config.DefaultConfig())
	git := newFakeGit()
	runner := newFakeRunner()

	return &harness{
		root:    root,
		factory: factory,
		git:     git,
		runner:  runner,
		env: Env{
			Git:      git,
			Resolver: factory,
			States:   StateLoaderFunc(state.Load),
			Runner:   runner,
			Logger:   logging.NewDiscardLogger(),
		},
	}
}

// addArtifact creates the data file and its state record. The
// producing command carries the artifact path so fakeRunner.ran can
// tell reproductions apart.
func (h *harness) addArtifact(t *testing.T, rel string, rec *state.Record) dataitem.DataItem {
	t.Helper()

	item, err := h.factory.DataItem(filepath.Join(h.root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("addArtifact(%q): %v", rel, err)
	}

	testutil.WriteFile(t, h.root, rel, "content of "+rel+"\n")
	if rec.Cmd == nil {
		rec.Cmd = []string{"regen", item.Data}
	}
	if err := state.Save(item.StateAbs(), rec); err != nil {
		t.Fatalf("saving state for %q: %v", rel, err)
	}
	return item
}

func (h *harness) node(t *testing.T, item dataitem.DataItem) *Node {
	t.Helper()
	n, err := NewNode(h.env, item)
	if err != nil {
		t.Fatalf("NewNode(%q): %v", item.Data, err)
	}
	return n
}

func reproduce(t *testing.T, n *Node, force bool) (bool, error) {
	t.Helper()
	return n.Reproduce(force, NewCodeDepSet(), nil)
}

func mustReproduce(t *testing.T, n *Node, force bool) bool {
	t.Helper()
	changed, err := reproduce(t, n, force)
	if err != nil {
		t.Fatalf("Reproduce: %v", err)
	}
	return changed
}

// chain builds data/a.csv -> data/b.csv -> data/c.csv (a depends on b,
// b depends on c) and returns the items in that order.
func (h *harness) chain(t *testing.T) (dataitem.DataItem, dataitem.DataItem, dataitem.DataItem) {
	t.Helper()
	c := h.addArtifact(t, "data/c.csv", &state.Record{Reproducible: true, CodeDeps: []string{"code/c.py"}})
	b := h.addArtifact(t, "data/b.csv", &state.Record{Reproducible: true, Deps: []string{"data/c.csv"}, CodeDeps: []string{"code/b.py"}})
	a := h.addArtifact(t, "data/a.csv", &state.Record{Reproducible: true, Deps: []string{"data/b.csv"}, CodeDeps: []string{"code/a.py"}})
	return a, b, c
}

var errBoom = errors.New("boom")

// contentKey mirrors the artifact cache's content addressing.
func contentKey(t *testing.T, content string) (string, error) {
	t.Helper()
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:]), nil
}

func errorWithCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "["+code+"]") {
		t.Fatalf("error %q does not carry code %s", err, code)
	}
}
