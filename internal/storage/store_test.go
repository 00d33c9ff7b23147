package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pixil98/go-testutil"
)

type markerSpec struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (s *markerSpec) Validate() error {
	return nil
}

func writeAsset(t *testing.T, path string, asset Asset[*markerSpec]) {
	t.Helper()

	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestNewFileStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewFileStore[*markerSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "path", store.path, tmpDir)
	testutil.AssertEqual(t, "records length", len(store.records), 0)
}

func TestNewFileStore_NonExistentDirectory(t *testing.T) {
	_, err := NewFileStore[*markerSpec]("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestNewFileStore_Load(t *testing.T) {
	tests := map[string]struct {
		files    map[string]string
		expErr   string
		expCount int
	}{
		"valid assets": {
			files: map[string]string{
				"a.json": `{"version":1,"id":"bank","spec":{"name":"Bank","value":1}}`,
				"b.json": `{"version":1,"id":"cafe","spec":{"name":"Cafe","value":2}}`,
			},
			expCount: 2,
		},
		"non json files are ignored": {
			files: map[string]string{
				"a.json":     `{"version":1,"id":"bank","spec":{"name":"Bank"}}`,
				"readme.txt": "ignore me",
				"data.yaml":  "ignore: me",
			},
			expCount: 1,
		},
		"invalid json": {
			files: map[string]string{
				"bad.json": `{invalid json`,
			},
			expErr: "unmarshalling asset",
		},
		"invalid asset": {
			files: map[string]string{
				"zero.json": `{"version":0,"id":"bank","spec":{"name":"Bank"}}`,
			},
			expErr: "validating zero.json",
		},
		"duplicate key": {
			files: map[string]string{
				"a.json":        `{"version":1,"id":"bank","spec":{"name":"Bank"}}`,
				"nested/b.json": `{"version":1,"id":"bank","spec":{"name":"Bank"}}`,
			},
			expErr: "duplicate key detected: bank",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			for file, content := range tt.files {
				path := filepath.Join(tmpDir, file)
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					t.Fatalf("failed to create dir: %v", err)
				}
				if err := os.WriteFile(path, []byte(content), 0644); err != nil {
					t.Fatalf("failed to write test file: %v", err)
				}
			}

			store, err := NewFileStore[*markerSpec](tmpDir)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "record count", len(store.records), tt.expCount)
		})
	}
}

func TestFileStore_Get(t *testing.T) {
	tmpDir := t.TempDir()
	writeAsset(t, filepath.Join(tmpDir, "existing.json"), Asset[*markerSpec]{
		Version:    1,
		Identifier: "existing",
		Spec:       &markerSpec{Name: "Test", Value: 42},
	})

	store, err := NewFileStore[*markerSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	tests := map[string]struct {
		id       Identifier
		expFound bool
		expName  string
		expValue int
	}{
		"get existing record": {
			id:       "existing",
			expFound: true,
			expName:  "Test",
			expValue: 42,
		},
		"get non-existing record": {
			id: "nonexistent",
		},
		"get empty id": {
			id: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result, found := store.Get(tt.id)

			testutil.AssertEqual(t, "found", found, tt.expFound)
			if !tt.expFound {
				return
			}
			testutil.AssertEqual(t, "name", result.Name, tt.expName)
			testutil.AssertEqual(t, "value", result.Value, tt.expValue)
		})
	}
}

func TestFileStore_GetAllIsCopy(t *testing.T) {
	store, err := NewFileStore[*markerSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[Identifier]*markerSpec{
		"one": {Name: "One"},
		"two": {Name: "Two"},
	}

	result := store.GetAll()
	testutil.AssertEqual(t, "count", len(result), 2)

	delete(result, "one")
	testutil.AssertEqual(t, "original untouched", len(store.records), 2)
}

func TestFileStore_Ids(t *testing.T) {
	store, err := NewFileStore[*markerSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[Identifier]*markerSpec{
		"cafe":   {},
		"arcade": {},
		"bank":   {},
	}

	ids := store.Ids()
	if !slices.Equal(ids, []Identifier{"arcade", "bank", "cafe"}) {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestFileStore_Save(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*markerSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("test-id", &markerSpec{Name: "TestItem", Value: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached, found := store.Get("test-id")
	testutil.AssertEqual(t, "cached", found, true)
	testutil.AssertEqual(t, "cached name", cached.Name, "TestItem")

	data, err := os.ReadFile(store.filePath("test-id"))
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}

	var asset Asset[*markerSpec]
	if err := json.Unmarshal(data, &asset); err != nil {
		t.Fatalf("failed to unmarshal saved data: %v", err)
	}
	testutil.AssertEqual(t, "asset version", asset.Version, uint(CurrentVersion))
	testutil.AssertEqual(t, "asset id", asset.Identifier, Identifier("test-id"))
	testutil.AssertEqual(t, "spec value", asset.Spec.Value, 100)

	// A reload reads back what was saved.
	reloaded, err := NewFileStore[*markerSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error reloading: %v", err)
	}
	again, found := reloaded.Get("test-id")
	testutil.AssertEqual(t, "reloaded", found, true)
	testutil.AssertEqual(t, "reloaded name", again.Name, "TestItem")
}

func TestFileStore_SaveRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*markerSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("bad_id", &markerSpec{Name: "x"})
	testutil.AssertErrorContains(t, err, "id must be alphanumeric")

	_, found := store.Get("bad_id")
	testutil.AssertEqual(t, "cached", found, false)

	if _, statErr := os.Stat(filepath.Join(tmpDir, "bad_id.json")); !os.IsNotExist(statErr) {
		t.Errorf("expected no file to be written")
	}
}
