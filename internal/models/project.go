package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultProjectLanguage = "typescript"

type Project struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Language    *string   `json:"language,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UpdateProject struct {
	ID          uuid.UUID
	Name        Field[string]
	Description Field[*string]
	Language    Field[*string]
	IsPublic    Field[bool]
	UpdatedAt   Field[time.Time]
}

func (u *UpdateProject) Apply(p *Project) {
	u.Name.Apply(&p.Name)
	u.Description.Apply(&p.Description)
	u.Language.Apply(&p.Language)
	u.IsPublic.Apply(&p.IsPublic)
	u.UpdatedAt.Apply(&p.UpdatedAt)
}
