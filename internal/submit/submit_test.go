package submit

import (
	"path/filepath"
	"testing"

	"github.com/shaiso/cyclesched/internal/cycle"
	"github.com/shaiso/cyclesched/internal/domain"
)

type fakeWriter struct {
	dirsRemoved []string
	dirsEnsured []string
	symlinks    map[string]string
	written     map[string]JobConf
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{symlinks: make(map[string]string), written: make(map[string]JobConf)}
}

func (f *fakeWriter) WriteJobFile(path string, conf JobConf) error {
	f.written[path] = conf
	return nil
}

func (f *fakeWriter) EnsureDir(path string) error {
	f.dirsEnsured = append(f.dirsEnsured, path)
	return nil
}

func (f *fakeWriter) RemoveDir(path string) error {
	f.dirsRemoved = append(f.dirsRemoved, path)
	return nil
}

func (f *fakeWriter) Symlink(oldname, newname string) error {
	f.symlinks[newname] = oldname
	return nil
}

func TestPrepareWritesJobFileAndSymlink(t *testing.T) {
	w := newFakeWriter()
	def := &domain.TaskDef{
		Name: "foo",
		Runtime: domain.RuntimeConfig{
			Script:          "echo hi",
			BatchSystemName: "background",
		},
	}
	req := Request{
		Def:        def,
		Identity:   domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)},
		SubmitNum:  1,
		JobLogRoot: "/var/log/jobs",
	}

	conf, err := Prepare(req, w)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if conf.Script != "echo hi" {
		t.Fatalf("Script = %q", conf.Script)
	}
	wantSymlink := "/var/log/jobs/foo/1/NN"
	if got, ok := w.symlinks[wantSymlink]; !ok || got != "01" {
		t.Fatalf("symlink %s = %q, ok=%v", wantSymlink, got, ok)
	}
	if _, ok := w.written[conf.LocalJobFilePath]; !ok {
		t.Fatalf("expected job file written at %s", conf.LocalJobFilePath)
	}
}

func TestPrepareRemovesStaleJobLogDirBeforeRecreating(t *testing.T) {
	w := newFakeWriter()
	def := &domain.TaskDef{Name: "foo", Runtime: domain.RuntimeConfig{Script: "echo hi"}}
	req := Request{
		Def:        def,
		Identity:   domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)},
		SubmitNum:  2,
		JobLogRoot: "/var/log/jobs",
	}

	conf, err := Prepare(req, w)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	wantDir := filepath.Dir(conf.LocalJobFilePath)
	if len(w.dirsRemoved) != 1 || w.dirsRemoved[0] != wantDir {
		t.Fatalf("dirsRemoved = %v, want [%s]", w.dirsRemoved, wantDir)
	}
	if w.dirsRemoved[0] != w.dirsEnsured[0] {
		t.Fatalf("expected the removed dir to be the same one re-created, removed=%s ensured=%s", w.dirsRemoved[0], w.dirsEnsured[0])
	}
}

func TestPrepareAppliesScriptOverride(t *testing.T) {
	w := newFakeWriter()
	def := &domain.TaskDef{Name: "foo", Runtime: domain.RuntimeConfig{Script: "echo original"}}
	req := Request{
		Def:        def,
		Identity:   domain.Identity{Name: "foo", Point: cycle.IntegerPoint(2)},
		SubmitNum:  1,
		JobLogRoot: "/var/log/jobs",
		Overrides:  map[string]string{"script": "echo overridden"},
	}

	conf, err := Prepare(req, w)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if conf.Script != "echo overridden" {
		t.Fatalf("Script = %q, want override applied", conf.Script)
	}
}
