package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_DefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	assert.True(t, c.Has("student", "attempt:submit"))
	assert.False(t, c.Has("student", "result:view-all"))
	assert.False(t, c.Has("student", "exam:view-keys"))
	assert.True(t, c.Has("instructor", "exam:view-keys"))
	assert.True(t, c.Has("admin", "anything:at-all"))
	assert.False(t, c.Has("", "exam:view"))
	assert.True(t, c.Any("student", "result:view-all", "result:view-own"))
}

func TestChecker_WildcardSuffix(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"result:*"}})
	assert.True(t, c.Has("auditor", "result:view-all"))
	assert.False(t, c.Has("auditor", "exam:create"))
}

func TestCan(t *testing.T) {
	assert.True(t, Can(WithRole(context.Background(), "instructor"), "result:view-all"))
	assert.False(t, Can(context.Background(), "exam:view"))
}
