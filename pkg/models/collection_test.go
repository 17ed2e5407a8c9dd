package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateCollectionName(t *testing.T) {
	valid := []string{"kb", "my-docs", "my_docs", "KB2024", "a"}
	for _, name := range valid {
		assert.NoError(t, ValidateCollectionName(name), "name %q must be valid", name)
	}

	invalid := []string{"", "my docs", "kb/2024", "kb.2024", "köche", "a!b"}
	for _, name := range invalid {
		assert.Error(t, ValidateCollectionName(name), "name %q must be rejected", name)
	}
}

func TestPhysicalKey(t *testing.T) {
	user1 := uuid.New()
	user2 := uuid.New()

	key1 := PhysicalKey(user1, "kb")
	key2 := PhysicalKey(user2, "kb")

	assert.Equal(t, user1.String()+"_kb", key1)
	assert.NotEqual(t, key1, key2, "two users' collections with the same name must map to different keys")
}
