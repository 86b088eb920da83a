package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

const compose = `services:
  web:
    ports:
      - "3000:3000"
`

func TestDocumentStore_LoadSave(t *testing.T) {
	store := NewDocumentStore("compose.yml", compose)
	assert.Equal(t, "compose.yml", store.Path())

	doc, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, doc.Set(domain.MustParseFieldPath("services.web.ports.0"), "8080:3000"))

	// Unsaved changes are not visible to a fresh load.
	fresh, err := store.Load()
	require.NoError(t, err)
	got, err := fresh.Get(domain.MustParseFieldPath("services.web.ports.0"))
	require.NoError(t, err)
	assert.Equal(t, "3000:3000", got)

	require.NoError(t, store.Save(doc))
	assert.Equal(t, 1, store.Saves())
	assert.Contains(t, store.Content(), "8080:3000")
}

func TestDocumentStore_InjectedErrors(t *testing.T) {
	store := NewDocumentStore("compose.yml", compose)

	store.LoadErr = errors.New("unreadable")
	_, err := store.Load()
	assert.ErrorIs(t, err, domain.ErrStorage)

	store.LoadErr = nil
	doc, err := store.Load()
	require.NoError(t, err)

	store.SaveErr = errors.New("read-only")
	assert.ErrorIs(t, store.Save(doc), domain.ErrStorage)
	assert.Equal(t, 0, store.Saves())
}

func TestDocumentStore_ParseError(t *testing.T) {
	store := NewDocumentStore("compose.yml", "- not a mapping\n")

	_, err := store.Load()
	assert.ErrorIs(t, err, domain.ErrStorage)
}
