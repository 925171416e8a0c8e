package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"directsales/internal/domain"
)

func TestWithAndFrom(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)

	ctx := With(context.Background(), Identity{UserID: "u1", Email: "a@b.c", Role: domain.RoleAdmin})
	id, ok := From(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
	assert.True(t, id.IsAdmin())

	_, ok = From(With(context.Background(), Identity{}))
	assert.False(t, ok)
}
