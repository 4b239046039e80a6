package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	key, err := s.Put(ctx, "exams/AZ-900/diagram.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "exams/AZ-900/diagram.png", key)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "png", string(b))

	_, err = s.Get(ctx, "exams/AZ-900/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStore_KeysStayInsideBase(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	key, err := s.Put(ctx, "../../etc/evil", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "etc/evil", key)

	_, err = s.Put(ctx, "  ", strings.NewReader("x"))
	assert.Error(t, err)
}
