package module

import (
	"errors"
	"testing"

	"github.com/mqlang/mq/internal/ast"
)

// newFakeResolver builds a Resolver backed by an in-memory file map,
// rooted at the given user directory.
func newFakeResolver(userDir string, files map[string]string) *Resolver {
	return &Resolver{
		UserDir: userDir,
		ReadFile: func(path string) ([]byte, error) {
			if src, ok := files[path]; ok {
				return []byte(src), nil
			}
			return nil, errors.New("no such file: " + path)
		},
		Exists: func(path string) bool {
			_, ok := files[path]
			return ok
		},
		cache: make(map[string]*Module),
	}
}

func TestResolveFindsUserDirModule(t *testing.T) {
	r := newFakeResolver("/home/tester/.mq", map[string]string{
		"/home/tester/.mq/utils.mq": `def double(x): mul(x, 2);`,
	})
	m, err := r.Resolve("utils", "")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if m.Name != "utils" || len(m.Program.Stmts) != 1 {
		t.Fatalf("unexpected module: %#v", m)
	}
	if _, ok := m.Program.Stmts[0].(*ast.Def); !ok {
		t.Fatalf("want top-level Def, got %T", m.Program.Stmts[0])
	}
}

func TestResolvePrefersUserDirOverLibDir(t *testing.T) {
	r := newFakeResolver("/home/tester/.mq", map[string]string{
		"/home/tester/.mq/utils.mq": `let from_user = 1;`,
		"/proj/lib/mq/utils.mq":     `let from_lib = 1;`,
	})
	// searchPaths puts UserDir first per spec order, so the user-dir copy
	// wins even though a lib copy also exists.
	m, err := r.Resolve("utils", "/proj/query.mq")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if m.Path != "/home/tester/.mq/utils.mq" {
		t.Errorf("want user-dir module to win, got %s", m.Path)
	}
}

func TestResolveFallsBackToLibDir(t *testing.T) {
	r := newFakeResolver("", map[string]string{
		"/proj/lib/mq/utils.mq": `let x = 1;`,
	})
	m, err := r.Resolve("utils", "/proj/query.mq")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if m.Path != "/proj/lib/mq/utils.mq" {
		t.Errorf("unexpected resolved path: %s", m.Path)
	}
}

func TestLoadCachesByAbsolutePath(t *testing.T) {
	reads := 0
	r := newFakeResolver("/home/.mq", map[string]string{"/home/.mq/utils.mq": `let x = 1;`})
	baseRead := r.ReadFile
	r.ReadFile = func(path string) ([]byte, error) {
		reads++
		return baseRead(path)
	}

	if _, err := r.Resolve("utils", ""); err != nil {
		t.Fatalf("first resolve error: %v", err)
	}
	if _, err := r.Resolve("utils", ""); err != nil {
		t.Fatalf("second resolve error: %v", err)
	}
	if reads != 1 {
		t.Errorf("want module file read exactly once, got %d reads", reads)
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	r := newFakeResolver("/home/.mq", map[string]string{
		"/home/.mq/a.mq": `include "b"`,
		"/home/.mq/b.mq": `include "a"`,
	})
	_, err := r.Resolve("a", "")
	if err == nil {
		t.Fatal("expected a cycle error, got nil")
	}
}

func TestResolveReportsModuleNotFound(t *testing.T) {
	r := newFakeResolver("", nil)
	_, err := r.Resolve("missing", "")
	if err == nil {
		t.Fatal("expected ModuleNotFound error, got nil")
	}
}
