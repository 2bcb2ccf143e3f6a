package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	repo, key, _ := newTestRepo(t)
	for _, name := range []string{"github-work", "GitHub", "gmail", "bank of example", "gitlab"} {
		require.NoError(t, repo.Create(key, name, nil))
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"github-work", "GitHub", "gmail", "bank of example", "gitlab"}},
		{"github", []string{"GitHub", "github-work"}},
		{"gt", []string{"GitHub", "gitlab", "github-work"}},
		{"bank example", []string{"bank of example"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		got := repo.Search(tt.query)
		if tt.want == nil {
			assert.Empty(t, got, tt.query)
			continue
		}
		assert.Equal(t, tt.want, got, tt.query)
	}
}
