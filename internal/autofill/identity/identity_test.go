package identity

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.org", Domain("www.example.org"))
	assert.Equal(t, "example.org", Domain(" WWW.Example.org "))
	assert.Equal(t, "shop.example.org", Domain("shop.example.org"))
}

func TestNew(t *testing.T) {
	id, err := New("jane", "www.example.org")
	require.NoError(t, err)
	assert.Equal(t, filler.Identity{Username: "jane", Email: "jane@example.org"}, id)

	_, err = New("jane", "")
	assert.ErrorIs(t, err, ErrNoDomain)

	_, err = New("", "example.org")
	assert.Error(t, err)
}

func TestNumbered(t *testing.T) {
	id, err := Numbered("", 3, "example.org")
	require.NoError(t, err)
	assert.Equal(t, "test3", id.Username)
	assert.Equal(t, "test3@example.org", id.Email)

	id, err = Numbered("qa", 12, "example.org")
	require.NoError(t, err)
	assert.Equal(t, "qa12@example.org", id.Email)

	_, err = Numbered("qa", 0, "example.org")
	assert.Error(t, err)
}

func TestFromEmail(t *testing.T) {
	id, err := FromEmail("test1@example.org")
	require.NoError(t, err)
	assert.Equal(t, "test1", id.Username)

	for _, bad := range []string{"", "nobody", "@example.org", "user@"} {
		_, err := FromEmail(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestRandom(t *testing.T) {
	id := Random(gofakeit.New(42), "example.org")

	assert.NotEmpty(t, id.Username)
	assert.Equal(t, id.Username+"@example.org", id.Email)
	assert.Equal(t, strings.ToLower(id.Username), id.Username)

	id = Random(gofakeit.New(42), "")
	local, domain, ok := strings.Cut(id.Email, "@")
	assert.True(t, ok)
	assert.Equal(t, id.Username, local)
	assert.NotEmpty(t, domain)
}

func TestResolve(t *testing.T) {
	faker := gofakeit.New(1)

	id, err := Resolve("", "qa@example.org", "ignored.org", faker)
	require.NoError(t, err)
	assert.Equal(t, filler.Identity{Username: "qa", Email: "qa@example.org"}, id)

	id, err = Resolve("login", "qa@example.org", "", faker)
	require.NoError(t, err)
	assert.Equal(t, "login", id.Username)

	id, err = Resolve("test5", "", "www.example.org", faker)
	require.NoError(t, err)
	assert.Equal(t, "test5@example.org", id.Email)

	id, err = Resolve("", "", "example.org", faker)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id.Email, "@example.org"))
}
