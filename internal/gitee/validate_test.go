package gitee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
)

func TestValidateBranchName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "main", want: "main"},
		{name: "trimmed", input: "  feature/login  ", want: "feature/login"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "double dot", input: "a..b", wantErr: true},
		{name: "space", input: "my branch", wantErr: true},
		{name: "tilde", input: "a~1", wantErr: true},
		{name: "caret", input: "a^", wantErr: true},
		{name: "colon", input: "a:b", wantErr: true},
		{name: "question", input: "a?", wantErr: true},
		{name: "star", input: "a*", wantErr: true},
		{name: "bracket", input: "a[0]", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "leading slash", input: "/a", wantErr: true},
		{name: "trailing slash", input: "a/", wantErr: true},
		{name: "lock suffix", input: "topic.lock", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateBranchName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierrors.IsArgumentError(err))
				assert.False(t, apierrors.IsKnown(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRepositoryName(t *testing.T) {
	valid := []string{"repo", "my-repo", "my_repo", "repo.js", "R2D2"}
	for _, name := range valid {
		got, err := ValidateRepositoryName(" " + name + " ")
		require.NoError(t, err, name)
		assert.Equal(t, name, got)
	}

	invalid := []string{"", ".hidden", "trailing.", "has space", "slash/name", "ümlaut"}
	for _, name := range invalid {
		_, err := ValidateRepositoryName(name)
		assert.Error(t, err, name)
	}
}

func TestValidateOwnerName(t *testing.T) {
	valid := []string{"octo", "octo-cat", "0day", "A1"}
	for _, name := range valid {
		got, err := ValidateOwnerName(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, got)
	}

	invalid := []string{"", "-lead", "under_score", "dot.name", "white space"}
	for _, name := range invalid {
		_, err := ValidateOwnerName(name)
		var argErr *apierrors.ArgumentError
		require.ErrorAs(t, err, &argErr, name)
		assert.Equal(t, "owner", argErr.Field)
	}
}

func TestValidateHead(t *testing.T) {
	got, err := validateHead("feature/x")
	require.NoError(t, err)
	assert.Equal(t, "feature/x", got)

	got, err = validateHead(" fork-owner:feature/x ")
	require.NoError(t, err)
	assert.Equal(t, "fork-owner:feature/x", got)

	_, err = validateHead("bad_owner:main")
	assert.Error(t, err)
	_, err = validateHead("owner:bad..branch")
	assert.Error(t, err)
}
