package session

import (
	"path"
	"strings"
)

// ProjectInfo is the first argument of the joinProjectResponse event.
type ProjectInfo struct {
	Project          Project `json:"project"`
	PermissionsLevel string  `json:"permissionsLevel,omitempty"`
	ProtocolVersion  int     `json:"protocolVersion,omitempty"`
	PublicID         string  `json:"publicId,omitempty"`
}

// Project is the project snapshot. Only the fields leafwire uses are
// decoded.
type Project struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	RootDocID  string   `json:"rootDoc_id,omitempty"`
	Compiler   string   `json:"compiler,omitempty"`
	Owner      *User    `json:"owner,omitempty"`
	RootFolder []Folder `json:"rootFolder"`
}

// User is a project member.
type User struct {
	ID        string `json:"_id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Folder is a node of the project tree.
type Folder struct {
	ID      string   `json:"_id"`
	Name    string   `json:"name"`
	Docs    []Doc    `json:"docs"`
	Folders []Folder `json:"folders"`
}

// Doc is an editable text document.
type Doc struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// DocEntry is a document with its slash-separated path from the project
// root, e.g. "chapters/intro.tex".
type DocEntry struct {
	Doc
	Path string
}

// Docs returns every document in the tree, depth first, folders in order.
// The root folder itself contributes no path segment.
func (p *Project) Docs() []DocEntry {
	var out []DocEntry
	for i := range p.RootFolder {
		out = walkFolder(out, &p.RootFolder[i], "")
	}
	return out
}

func walkFolder(out []DocEntry, f *Folder, prefix string) []DocEntry {
	for _, d := range f.Docs {
		out = append(out, DocEntry{Doc: d, Path: path.Join(prefix, d.Name)})
	}
	for i := range f.Folders {
		sub := &f.Folders[i]
		out = walkFolder(out, sub, path.Join(prefix, sub.Name))
	}
	return out
}

// FindDoc looks a document up by id or by path.
func (p *Project) FindDoc(ref string) (DocEntry, bool) {
	ref = strings.TrimPrefix(ref, "/")
	for _, d := range p.Docs() {
		if d.ID == ref || d.Path == ref {
			return d, true
		}
	}
	return DocEntry{}, false
}
