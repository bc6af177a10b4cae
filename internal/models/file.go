package models

import (
	"time"

	"github.com/google/uuid"
)

type FileType string

const (
	FileTypeFile   FileType = "file"
	FileTypeFolder FileType = "folder"
)

func (t FileType) Valid() bool {
	return t == FileTypeFile || t == FileTypeFolder
}

// FileNode represents a file or a folder in the project structure.
// Path is the full slash-delimited path, e.g. "/src/components/Button.tsx".
type FileNode struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"projectId"`
	ParentID  *uuid.UUID `json:"parentId"` // nil for root-level nodes
	Type      FileType   `json:"type"`
	Name      string     `json:"name"`
	Path      string     `json:"path"`
	Content   *string    `json:"content,omitempty"`
	Language  *string    `json:"language,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (f *FileNode) IsFolder() bool {
	return f.Type == FileTypeFolder
}

type UpdateFile struct {
	ID        uuid.UUID
	Name      Field[string]
	Path      Field[string]
	Content   Field[*string]
	ParentID  Field[*uuid.UUID]
	UpdatedAt Field[time.Time]
}

func (u *UpdateFile) Apply(f *FileNode) {
	u.Name.Apply(&f.Name)
	u.Path.Apply(&f.Path)
	u.Content.Apply(&f.Content)
	u.ParentID.Apply(&f.ParentID)
	u.UpdatedAt.Apply(&f.UpdatedAt)
}
