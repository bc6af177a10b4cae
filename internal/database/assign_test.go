package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cloud-ide/backend/internal/models"
)

func TestAssignmentsOnlySetFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	update := &models.UpdateFile{
		Path:      models.Set("/lib"),
		UpdatedAt: models.Set(now),
	}

	var a Assignments
	AddField(&a, "name", update.Name, nil)
	AddField(&a, "path", update.Path, nil)
	AddField(&a, "updated_at", update.UpdatedAt, func(t time.Time) any { return t.UnixMilli() })

	assert.False(t, a.Empty())
	assert.Equal(t, "path = $1, updated_at = $2", a.SQL(Dollar))
	assert.Equal(t, "path = ?, updated_at = ?", a.SQL(Question))
	assert.Equal(t, []any{"/lib", now.UnixMilli()}, a.Args())
}

func TestAssignmentsEmpty(t *testing.T) {
	var a Assignments
	AddField(&a, "name", models.Field[string]{}, nil)
	assert.True(t, a.Empty())
	assert.Equal(t, "", a.SQL(Dollar))
}
