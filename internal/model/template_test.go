package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		fields  []Field
		wantErr bool
	}{
		{"ok", []Field{{Name: "name", Prompt: "What is your name?", Type: FieldTypeString}}, false},
		{"legacy yes/no spelling", []Field{{Name: "ok", Prompt: "Ok?", Type: "yes/no"}}, false},
		{"no fields", nil, true},
		{"blank name", []Field{{Name: " ", Prompt: "?", Type: FieldTypeString}}, true},
		{"duplicate", []Field{
			{Name: "a", Prompt: "A?", Type: FieldTypeString},
			{Name: "a", Prompt: "A again?", Type: FieldTypeStory},
		}, true},
		{"blank prompt", []Field{{Name: "a", Type: FieldTypeString}}, true},
		{"unknown type", []Field{{Name: "a", Prompt: "A?", Type: "number"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := &Template{Name: "t", Fields: tt.fields}
			err := tpl.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTemplate)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTemplateNormalize(t *testing.T) {
	tpl := &Template{Fields: []Field{{Name: "ok", Prompt: "Ok?", Type: "Yes/No"}}}
	tpl.Normalize()
	assert.Equal(t, FieldTypeYesNo, tpl.Fields[0].Type)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Key Points", DisplayName("key_points"))
	assert.Equal(t, "Name", DisplayName("name"))
	assert.Equal(t, "Issue Description", DisplayName("ISSUE_description"))
	assert.Equal(t, "Élan Vital", DisplayName("élan_vital"))
	assert.Equal(t, "Über Name", DisplayName("über_NAME"))
}

func TestSessionRecentLog(t *testing.T) {
	s := NewSession("s-1", "t-1", time.Now())
	assert.Nil(t, s.RecentLog(3))

	for _, text := range []string{"a", "b", "c", "d"} {
		s.Append(SenderUser, text, time.Now())
	}

	recent := s.RecentLog(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Text)
	assert.Equal(t, "d", recent[1].Text)

	recent[0].Text = "changed"
	assert.Equal(t, "c", s.ConversationLog[2].Text)
	assert.Len(t, s.RecentLog(10), 4)
}

func TestSessionCopies(t *testing.T) {
	s := NewSession("s-1", "t-1", time.Now())
	v := "Alex"
	s.ExtractedValues["name"] = &v
	s.ExtractedValues["story"] = nil
	s.FieldScores["name"] = 8

	values := s.ExtractedCopy()
	*values["name"] = "Sam"
	assert.Equal(t, "Alex", *s.ExtractedValues["name"])
	assert.Nil(t, values["story"])
	assert.True(t, s.HasValue("name"))
	assert.False(t, s.HasValue("story"))

	scores := s.ScoresCopy()
	scores["name"] = 1
	assert.Equal(t, 8, s.FieldScores["name"])
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-3))
	assert.Equal(t, 7, ClampScore(7))
	assert.Equal(t, 10, ClampScore(42))
}
