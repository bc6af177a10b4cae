package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFieldApply(t *testing.T) {
	name := "old"
	Field[string]{}.Apply(&name)
	assert.Equal(t, "old", name)

	Set("new").Apply(&name)
	assert.Equal(t, "new", name)
}

func TestUpdateFileApply(t *testing.T) {
	content := "package main"
	node := &FileNode{Name: "main.go", Path: "/main.go", Type: FileTypeFile, Content: &content}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	update := &UpdateFile{
		Name:      Set("cmd.go"),
		Path:      Set("/cmd.go"),
		UpdatedAt: Set(now),
	}
	update.Apply(node)

	assert.Equal(t, "cmd.go", node.Name)
	assert.Equal(t, "/cmd.go", node.Path)
	assert.Equal(t, now, node.UpdatedAt)
	if assert.NotNil(t, node.Content) {
		assert.Equal(t, "package main", *node.Content)
	}

	(&UpdateFile{Content: Set[*string](nil)}).Apply(node)
	assert.Nil(t, node.Content)
}

func TestUpdateProjectApplyLeavesUnsetFields(t *testing.T) {
	desc := "demo"
	p := &Project{Name: "ide", Description: &desc, IsPublic: true}

	(&UpdateProject{IsPublic: Set(false)}).Apply(p)

	assert.Equal(t, "ide", p.Name)
	assert.Equal(t, &desc, p.Description)
	assert.False(t, p.IsPublic)
}

func TestMessageRoleValid(t *testing.T) {
	assert.True(t, MessageRoleUser.Valid())
	assert.True(t, MessageRoleSystem.Valid())
	assert.False(t, MessageRole("tool").Valid())
	assert.True(t, FileTypeFolder.Valid())
	assert.False(t, FileType("link").Valid())
}
