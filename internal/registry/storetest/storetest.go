// Package storetest contiene la suite de comportamiento común a todos los
// adapters de ResourceStore. Cada adapter la corre desde sus propios tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
)

// Factory crea un store vacío para un subtest.
type Factory func(t *testing.T) repository.ResourceStore

// Run ejecuta la suite completa contra stores creados por newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	tests := map[string]func(*testing.T, repository.ResourceStore){
		"PutGetLeaf":           testPutGetLeaf,
		"MissingIsNotFound":    testMissingIsNotFound,
		"AncestorsCreated":     testAncestorsCreated,
		"PutReplaces":          testPutReplaces,
		"LocaleSubKey":         testLocaleSubKey,
		"DeleteSubtree":        testDeleteSubtree,
		"DeleteMissingIsNoop":  testDeleteMissingIsNoop,
		"TenantIsolation":      testTenantIsolation,
		"RejectsUnsafeKeys":    testRejectsUnsafeKeys,
		"CollectionProperties": testCollectionProperties,
	}
	for name, fn := range tests {
		fn := fn
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

const tenant = "acme.com"

func leaf(props map[string]string) *repository.Resource {
	r := repository.NewResource()
	for k, v := range props {
		r.SetProperty(k, v)
	}
	return r
}

func testPutGetLeaf(t *testing.T, s repository.ResourceStore) {
	ctx := context.Background()
	key := repository.Key(tenant, "/identity/email/accountlock/en_us")

	require.NoError(t, s.Put(ctx, leaf(map[string]string{"subject": "Hola", "body": "<p>x</p>"}), key))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, got.Collection)
	require.Equal(t, "Hola", got.Property("subject"))
	require.Equal(t, "<p>x</p>", got.Property("body"))
	require.Empty(t, got.Children)
}

func testMissingIsNotFound(t *testing.T, s repository.ResourceStore) {
	ctx := context.Background()
	key := repository.Key(tenant, "/identity/email/nothing")

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Get(ctx, key)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func testAncestorsCreated(t *testing.T, s repository.ResourceStore) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, leaf(nil), repository.Key(tenant, "/identity/email/accountlock/en_us")))
	require.NoError(t, s.Put(ctx, leaf(nil), repository.Key(tenant, "/identity/email/passwordreset/en_us")))

	root, err := s.Get(ctx, repository.Key(tenant, "/identity/email"))
	require.NoError(t, err)
	require.True(t, root.Collection)
	require.ElementsMatch(t, []string{
		"/identity/email/accountlock",
		"/identity/email/passwordreset",
	}, root.Children)

	typ, err := s.Get(ctx, repository.Key(tenant, "/identity/email/accountlock"))
	require.NoError(t, err)
	require.True(t, typ.Collection)
	require.Equal(t, []string{"/identity/email/accountlock/en_us"}, typ.Children)

	ok, err := s.Exists(ctx, repository.Key(tenant, "/identity"))
	require.NoError(t, err)
	require.True(t, ok)
}

func testPutReplaces(t *testing.T, s repository.ResourceStore) {
	ctx := context.Background()
	key := repository.Key(tenant, "/identity/email/accountlock/en_us")

	require.NoError(t, s.Put(ctx, leaf(map[string]string{"subject": "v1", "footer": "f"}), key))
	require.NoError(t, s.Put(ctx, leaf(map[string]string{"subject": "v2"}), key))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "v2", got.Property("subject"))
	require.Equal(t, "", got.Property("footer"))
}

func testLocaleSubKey(t *testing.T, s repository.ResourceStore) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, leaf(map[string]string{"locale": "es_AR"}),
		repository.LocaleKey(tenant, "/identity/email/accountlock", "es_AR")))

	// El locale se guarda en minúsculas: cualquier variante lo encuentra.
	for _, loc := range []string{"es_AR", "es_ar", "ES_AR"} {
		ok, err := s.Exists(ctx, repository.LocaleKey(tenant, "/identity/email/accountlock", loc))
		require.NoError(t, err)
		require.True(t, ok, loc)
	}
	ok, err := s.Exists(ctx, repository.Key(tenant, "/identity/email/accountlock/es_ar"))
	require.NoError(t, err)
	require.True(t, ok)
}

func testDeleteSubtree(t *testing.T, s repository.ResourceStore) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, leaf(nil), repository.Key(tenant, "/identity/email/accountlock/en_us")))
	require.NoError(t, s.Put(ctx, leaf(nil), repository.Key(tenant, "/identity/email/accountlock/es_ar")))
	require.NoError(t, s.Put(ctx, leaf(nil), repository.Key(tenant, "/identity/email/accountlockout/en_us")))

	require.NoError(t, s.Delete(ctx, repository.Key(tenant, "/identity/email/accountlock")))

	for _, p := range []string{
		"/identity/email/accountlock",
		"/identity/email/accountlock/en_us",
		"/identity/email/accountlock/es_ar",
	} {
		ok, err := s.Exists(ctx, repository.Key(tenant, p))
		require.NoError(t, err)
		require.False(t, ok, p)
	}

	// Un hermano con el mismo prefijo de nombre no se toca.
	ok, err := s.Exists(ctx, repository.Key(tenant, "/identity/email/accountlockout/en_us"))
	require.NoError(t, err)
	require.True(t, ok)

	root, err := s.Get(ctx, repository.Key(tenant, "/identity/email"))
	require.NoError(t, err)
	require.Equal(t, []string{"/identity/email/accountlockout"}, root.Children)
}

func testDeleteMissingIsNoop(t *testing.T, s repository.ResourceStore) {
	require.NoError(t, s.Delete(context.Background(), repository.Key(tenant, "/identity/email/nothing")))
}

func testTenantIsolation(t *testing.T, s repository.ResourceStore) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, leaf(map[string]string{"subject": "a"}), repository.Key("a.com", "/identity/email/x")))
	require.NoError(t, s.Put(ctx, leaf(map[string]string{"subject": "b"}), repository.Key("b.com", "/identity/email/x")))

	got, err := s.Get(ctx, repository.Key("a.com", "/identity/email/x"))
	require.NoError(t, err)
	require.Equal(t, "a", got.Property("subject"))

	require.NoError(t, s.Delete(ctx, repository.Key("a.com", "/identity")))

	ok, err := s.Exists(ctx, repository.Key("b.com", "/identity/email/x"))
	require.NoError(t, err)
	require.True(t, ok)
}

func testRejectsUnsafeKeys(t *testing.T, s repository.ResourceStore) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, leaf(nil), repository.Key(tenant, "/identity/email/x/en_us")))

	unsafe := []repository.ResourceKey{
		repository.Key("", "/identity"),
		repository.Key("../other", "/identity"),
		repository.Key(tenant, "/identity/email/.."),
		repository.Key(tenant, "/identity/../identity"),
		repository.LocaleKey(tenant, "/identity/email/x", ".."),
		repository.LocaleKey(tenant, "/identity/email/x", "en/us"),
	}
	for _, key := range unsafe {
		_, err := s.Exists(ctx, key)
		require.ErrorIs(t, err, repository.ErrInvalidInput, "%+v", key)
		require.ErrorIs(t, s.Delete(ctx, key), repository.ErrInvalidInput, "%+v", key)
		require.ErrorIs(t, s.Put(ctx, leaf(nil), key), repository.ErrInvalidInput, "%+v", key)
	}

	ok, err := s.Exists(ctx, repository.Key(tenant, "/identity/email/x/en_us"))
	require.NoError(t, err)
	require.True(t, ok)
}

func testCollectionProperties(t *testing.T, s repository.ResourceStore) {
	ctx := context.Background()
	c := repository.NewCollection()
	c.SetProperty("display", "Account Lock")
	require.NoError(t, s.Put(ctx, c, repository.Key(tenant, "/identity/email/accountlock")))

	got, err := s.Get(ctx, repository.Key(tenant, "/identity/email/accountlock"))
	require.NoError(t, err)
	require.True(t, got.Collection)
	require.Equal(t, "Account Lock", got.Property("display"))
	require.NotNil(t, got.Children)
	require.Empty(t, got.Children)
}
