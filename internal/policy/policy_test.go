package policy

import (
	"testing"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

func TestRequireOwnerOrAdmin(t *testing.T) {
	owner := Actor{ID: 1, Role: entity.RoleUser}
	stranger := Actor{ID: 2, Role: entity.RoleUser}
	admin := Actor{ID: 3, Role: entity.RoleAdmin}

	assert.NoError(t, RequireOwnerOrAdmin(1, owner))
	assert.NoError(t, RequireOwnerOrAdmin(1, admin))
	assert.ErrorIs(t, RequireOwnerOrAdmin(1, stranger), apperror.ErrForbidden)
	assert.ErrorIs(t, RequireOwnerOrAdmin(0, Actor{}), apperror.ErrForbidden)
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(Actor{ID: 1, Role: entity.RoleAdmin}))
	assert.ErrorIs(t, RequireAdmin(Actor{ID: 1, Role: entity.RoleUser}), apperror.ErrForbidden)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("17")
	assert.NoError(t, err)
	assert.Equal(t, uint(17), id)

	for _, raw := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, apperror.ErrValidation, raw)
	}
}
