package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		languages []string
		want      string
	}{
		{
			name:      "single language",
			languages: []string{"go"},
			want:      `state:open label:"good first issue","help wanted" no:assignee (language:go)`,
		},
		{
			name:      "multiple languages keep input order",
			languages: []string{"python", "rust", "javascript"},
			want:      `state:open label:"good first issue","help wanted" no:assignee (language:python OR language:rust OR language:javascript)`,
		},
		{
			name:      "unknown language passes through",
			languages: []string{"klingon"},
			want:      `state:open label:"good first issue","help wanted" no:assignee (language:klingon)`,
		},
		{
			name:      "language with space is quoted",
			languages: []string{"Jupyter Notebook", "go"},
			want:      `state:open label:"good first issue","help wanted" no:assignee (language:"Jupyter Notebook" OR language:go)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.languages))
		})
	}
}

func TestBuild_ClauseStructure(t *testing.T) {
	languages := []string{"go", "c", "typescript", "ruby"}
	q := Build(languages)

	assert.Equal(t, 1, strings.Count(q, "("))
	assert.Equal(t, 1, strings.Count(q, ")"))
	assert.Equal(t, len(languages), strings.Count(q, "language:"))
	assert.Equal(t, len(languages)-1, strings.Count(q, " OR "))

	assert.Equal(t, 1, strings.Count(q, OpenFilter))
	assert.Equal(t, 1, strings.Count(q, LabelFilter))
	assert.Equal(t, 1, strings.Count(q, UnassignedFilter))

	open := strings.Index(q, "(")
	assert.True(t, strings.HasSuffix(q, ")"))
	assert.NotContains(t, q[:open], "language:")
}
