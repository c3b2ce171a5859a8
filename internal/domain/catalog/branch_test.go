package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBranch(t *testing.T) {
	t.Run("creates branch with derived slug", func(t *testing.T) {
		branch, err := NewBranch("Computer Science and Technology", "CST")
		require.NoError(t, err)
		require.NotNil(t, branch)

		assert.Equal(t, "Computer Science and Technology", branch.Name)
		assert.Equal(t, "CST", branch.ShortName)
		assert.Equal(t, "computer-science-and-technology", branch.Slug)
		assert.NotEmpty(t, branch.ID)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		branch, err := NewBranch("  Electrical Engineering ", " EE ")
		require.NoError(t, err)
		assert.Equal(t, "Electrical Engineering", branch.Name)
		assert.Equal(t, "EE", branch.ShortName)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewBranch("", "CST")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with empty short name", func(t *testing.T) {
		_, err := NewBranch("Computer Science", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "short name cannot be empty")
	})
}

func TestBranchUpdate(t *testing.T) {
	t.Run("regenerates slug when name changes", func(t *testing.T) {
		branch, err := NewBranch("Computer Science", "CS")
		require.NoError(t, err)

		err = branch.Update("Computer Science and Technology", "CST")
		require.NoError(t, err)
		assert.Equal(t, "computer-science-and-technology", branch.Slug)
	})

	t.Run("keeps slug when only short name changes", func(t *testing.T) {
		branch, err := NewBranch("Computer Science", "CS")
		require.NoError(t, err)
		original := branch.Slug

		err = branch.Update("Computer Science", "CSE")
		require.NoError(t, err)
		assert.Equal(t, original, branch.Slug)
		assert.Equal(t, "CSE", branch.ShortName)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		branch, err := NewBranch("Computer Science", "CS")
		require.NoError(t, err)

		err = branch.Update("", "CS")
		require.Error(t, err)
	})
}
