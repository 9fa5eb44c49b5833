package session

import "testing"

func testProjectTree() *Project {
	return &Project{
		ID:   "p1",
		Name: "Thesis",
		RootFolder: []Folder{{
			ID:   "root",
			Name: "rootFolder",
			Docs: []Doc{{ID: "d1", Name: "main.tex"}},
			Folders: []Folder{
				{ID: "f1", Name: "chapters", Docs: []Doc{{ID: "d2", Name: "intro.tex"}, {ID: "d3", Name: "method.tex"}}},
				{ID: "f2", Name: "appendix", Folders: []Folder{{ID: "f3", Name: "data", Docs: []Doc{{ID: "d4", Name: "table.tex"}}}}},
			},
		}},
	}
}

func TestProjectDocs(t *testing.T) {
	docs := testProjectTree().Docs()
	want := []string{"main.tex", "chapters/intro.tex", "chapters/method.tex", "appendix/data/table.tex"}
	if len(docs) != len(want) {
		t.Fatalf("Docs() returned %d entries, want %d", len(docs), len(want))
	}
	for i, d := range docs {
		if d.Path != want[i] {
			t.Errorf("docs[%d].Path = %q, want %q", i, d.Path, want[i])
		}
	}
}

func TestProjectDocsEmpty(t *testing.T) {
	if docs := (&Project{}).Docs(); len(docs) != 0 {
		t.Errorf("Docs() = %v, want none", docs)
	}
}

func TestFindDoc(t *testing.T) {
	p := testProjectTree()

	tests := []struct {
		ref    string
		wantID string
		found  bool
	}{
		{"d3", "d3", true},
		{"chapters/method.tex", "d3", true},
		{"/appendix/data/table.tex", "d4", true},
		{"missing.tex", "", false},
	}
	for _, tt := range tests {
		d, ok := p.FindDoc(tt.ref)
		if ok != tt.found || d.ID != tt.wantID {
			t.Errorf("FindDoc(%q) = %q, %v; want %q, %v", tt.ref, d.ID, ok, tt.wantID, tt.found)
		}
	}
}
