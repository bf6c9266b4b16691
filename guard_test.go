package kennel_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kennelhq/kennel"
)

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	img := kennel.Image{ID: uuid.New(), OwnerID: owner}

	t.Run("owner allowed", func(t *testing.T) {
		err := kennel.Authorize(kennel.Identity{UserID: owner, Role: kennel.RoleUser}, img)
		assert.NoError(t, err)
	})

	t.Run("other user forbidden", func(t *testing.T) {
		err := kennel.Authorize(kennel.Identity{UserID: uuid.New(), Role: kennel.RoleUser}, img)
		assert.ErrorIs(t, err, kennel.ErrForbidden)
	})

	t.Run("admin role does not bypass ownership", func(t *testing.T) {
		err := kennel.Authorize(kennel.Identity{UserID: uuid.New(), Role: kennel.RoleAdmin}, img)
		assert.ErrorIs(t, err, kennel.ErrForbidden)
	})
}
