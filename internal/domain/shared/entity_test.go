package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEntity(t *testing.T) {
	e := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, e.GetID())
	assert.Equal(t, e.GetCreatedAt(), e.GetUpdatedAt())
	assert.WithinDuration(t, time.Now(), e.GetCreatedAt(), time.Second)
}

func TestIncrementVersion(t *testing.T) {
	a := NewTenantAggregateRoot(uuid.New())
	require.Equal(t, 1, a.GetVersion())
	created := a.GetUpdatedAt()

	time.Sleep(time.Millisecond)
	a.IncrementVersion()

	assert.Equal(t, 2, a.GetVersion())
	assert.True(t, a.GetUpdatedAt().After(created), "state transition must refresh UpdatedAt")
	assert.Equal(t, created, a.GetCreatedAt())
}
