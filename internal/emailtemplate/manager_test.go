package emailtemplate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
	"github.com/dropDatabas3/i18nmail/internal/registry/adapters/memory"
)

const tenant = "acme.com"

// spyStore cuenta llamadas por operación y permite inyectar fallas.
type spyStore struct {
	next repository.ResourceStore

	mu    sync.Mutex
	calls map[string]int

	existsErr error
	getErr    error
	putErr    error
	deleteErr error
}

func newSpy() *spyStore {
	return &spyStore{next: memory.New(), calls: map[string]int{}}
}

func (s *spyStore) count(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *spyStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *spyStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *spyStore) Exists(ctx context.Context, key repository.ResourceKey) (bool, error) {
	s.count("exists")
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.next.Exists(ctx, key)
}

func (s *spyStore) Get(ctx context.Context, key repository.ResourceKey) (*repository.Resource, error) {
	s.count("get")
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.next.Get(ctx, key)
}

func (s *spyStore) Put(ctx context.Context, res *repository.Resource, key repository.ResourceKey) error {
	s.count("put")
	if s.putErr != nil {
		return s.putErr
	}
	return s.next.Put(ctx, res, key)
}

func (s *spyStore) Delete(ctx context.Context, key repository.ResourceKey) error {
	s.count("delete")
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.next.Delete(ctx, key)
}

func sampleTemplate(display, locale string) *EmailTemplate {
	return &EmailTemplate{
		TemplateDisplayName: display,
		TemplateType:        Normalize(display),
		Locale:              locale,
		Subject:             "Hola {{.UserName}}",
		Body:                "<p>Confirmá tu cuenta: {{.Link}}</p>",
		Footer:              "<p>{{.TenantDomain}}</p>",
	}
}

func TestAddTemplateType_ThenExists(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())

	require.NoError(t, m.AddTemplateType(ctx, "Account Confirmation", tenant))

	ok, err := m.TemplateTypeExists(ctx, "Account Confirmation", tenant)
	require.NoError(t, err)
	require.True(t, ok)

	// Otro tenant no lo ve
	ok, err = m.TemplateTypeExists(ctx, "Account Confirmation", "other.com")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAddTemplateType_Duplicate(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())

	require.NoError(t, m.AddTemplateType(ctx, "Password Reset", tenant))
	err := m.AddTemplateType(ctx, "Password Reset", tenant)
	require.True(t, IsAlreadyExists(err), "got %v", err)

	var tErr *Error
	require.True(t, errors.As(err, &tErr))
	require.Equal(t, CodeTemplateTypeAlreadyExists, tErr.Code)

	// Misma forma normalizada, otro display name
	err = m.AddTemplateType(ctx, "passwordreset", tenant)
	require.True(t, IsAlreadyExists(err), "got %v", err)
}

func TestAddTemplateType_InvalidNameTouchesNothing(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"", "   ", "bad/name", "a;b", "with,comma", "café"} {
		spy := newSpy()
		m := New(spy)
		err := m.AddTemplateType(ctx, name, tenant)
		if !IsClient(err) {
			t.Fatalf("%q: expected client error, got %v", name, err)
		}
		if spy.Total() != 0 {
			t.Fatalf("%q: expected no store calls, got %d", name, spy.Total())
		}
	}
}

func TestAddTemplateType_StoreFailureIsServerError(t *testing.T) {
	spy := newSpy()
	boom := errors.New("disk on fire")
	spy.existsErr = boom

	err := New(spy).AddTemplateType(context.Background(), "Account Lock", tenant)
	require.True(t, IsServer(err), "got %v", err)
	require.ErrorIs(t, err, boom)
}

func TestGetTemplate_DefaultLocaleMissingIsNotFound(t *testing.T) {
	spy := newSpy()
	m := New(spy)

	_, err := m.GetTemplate(context.Background(), "Account Lock", DefaultLocale, tenant)
	require.True(t, IsNotFound(err), "got %v", err)

	var tErr *Error
	require.True(t, errors.As(err, &tErr))
	require.Equal(t, CodeTemplateTypeNotFound, tErr.Code)
	require.Equal(t, 1, spy.Calls("get"), "default locale lookup must not recurse")
}

func TestGetTemplate_DefaultLocaleComparisonIgnoresCase(t *testing.T) {
	spy := newSpy()
	m := New(spy)

	_, err := m.GetTemplate(context.Background(), "Account Lock", "EN_us", tenant)
	require.True(t, IsNotFound(err), "got %v", err)
	require.Equal(t, 1, spy.Calls("get"))
}

func TestGetTemplate_FallsBackToDefaultLocale(t *testing.T) {
	ctx := context.Background()
	spy := newSpy()
	m := New(spy)

	require.NoError(t, m.AddTemplate(ctx, sampleTemplate("Account Lock", DefaultLocale), tenant))

	got, err := m.GetTemplate(ctx, "Account Lock", "fr_FR", tenant)
	require.NoError(t, err)
	require.Equal(t, DefaultLocale, got.Locale)

	// Sin default tampoco hay fallback
	_, err = m.GetTemplate(ctx, "Account Unlock", "fr_FR", tenant)
	require.True(t, IsNotFound(err), "got %v", err)
}

func TestGetTemplate_ExactLocaleWins(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())

	require.NoError(t, m.AddTemplate(ctx, sampleTemplate("Account Lock", DefaultLocale), tenant))
	es := sampleTemplate("Account Lock", "es_AR")
	es.Subject = "Tu cuenta fue bloqueada"
	require.NoError(t, m.AddTemplate(ctx, es, tenant))

	got, err := m.GetTemplate(ctx, "Account Lock", "es_AR", tenant)
	require.NoError(t, err)
	require.Equal(t, "Tu cuenta fue bloqueada", got.Subject)
}

func TestGetTemplate_InvalidInput(t *testing.T) {
	spy := newSpy()
	m := New(spy)
	ctx := context.Background()

	_, err := m.GetTemplate(ctx, "Account<Lock>", DefaultLocale, tenant)
	require.True(t, IsClient(err), "got %v", err)

	_, err = m.GetTemplate(ctx, "Account Lock", "  ", tenant)
	require.True(t, IsClient(err), "got %v", err)

	_, err = m.GetTemplate(ctx, "Account Lock", "en;US", tenant)
	require.True(t, IsClient(err), "got %v", err)

	require.Zero(t, spy.Total())
}

func TestAddTemplate_BlankSectionsTouchNothing(t *testing.T) {
	cases := map[string]func(*EmailTemplate){
		"subject": func(t *EmailTemplate) { t.Subject = " " },
		"body":    func(t *EmailTemplate) { t.Body = "" },
		"footer":  func(t *EmailTemplate) { t.Footer = "\n" },
		"locale":  func(t *EmailTemplate) { t.Locale = "" },
		"name":    func(t *EmailTemplate) { t.TemplateDisplayName = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			spy := newSpy()
			tpl := sampleTemplate("Account Enable", DefaultLocale)
			mutate(tpl)

			err := New(spy).AddTemplate(context.Background(), tpl, tenant)
			require.True(t, IsClient(err), "got %v", err)
			require.Zero(t, spy.Total())
		})
	}

	spy := newSpy()
	err := New(spy).AddTemplate(context.Background(), nil, tenant)
	require.True(t, IsClient(err), "got %v", err)
	require.Zero(t, spy.Total())
}

func TestAddTemplate_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())

	in := sampleTemplate("Account Confirmation", "es_AR")
	in.TemplateType = "whatever" // se corrige al nombre normalizado
	require.NoError(t, m.AddTemplate(ctx, in, tenant))

	got, err := m.GetTemplate(ctx, "Account Confirmation", "es_AR", tenant)
	require.NoError(t, err)

	want := EmailTemplate{
		TemplateDisplayName: "Account Confirmation",
		TemplateType:        "accountconfirmation",
		Locale:              "es_AR",
		EmailContentType:    DefaultContentType,
		Subject:             in.Subject,
		Body:                in.Body,
		Footer:              in.Footer,
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAddTemplate_UpsertsExistingTranslation(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())

	tpl := sampleTemplate("Ask Password", DefaultLocale)
	require.NoError(t, m.AddTemplate(ctx, tpl, tenant))
	tpl.Subject = "v2"
	require.NoError(t, m.AddTemplate(ctx, tpl, tenant))

	got, err := m.GetTemplate(ctx, "Ask Password", DefaultLocale, tenant)
	require.NoError(t, err)
	require.Equal(t, "v2", got.Subject)
}

func TestNormalizedNameIsTheStorageSegment(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m := New(store)

	require.NoError(t, m.AddTemplate(ctx, sampleTemplate("Account Confirmation", "en_US"), tenant))

	typeRes, err := store.Get(ctx, repository.Key(tenant, "/identity/email/accountconfirmation"))
	require.NoError(t, err)
	require.True(t, typeRes.Collection)
	require.Equal(t, "Account Confirmation", typeRes.Property(PropDisplayName))
	require.Equal(t, []string{"/identity/email/accountconfirmation/en_us"}, typeRes.Children)

	ok, err := m.TemplateExists(ctx, "account confirmation", "en_US", tenant)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.DeleteTemplate(ctx, "ACCOUNT CONFIRMATION", "EN_US", tenant))
	ok, err = m.TemplateExists(ctx, "Account Confirmation", "en_US", tenant)
	require.NoError(t, err)
	require.False(t, ok)

	// El tipo sobrevive al borrado de su última traducción
	ok, err = m.TemplateTypeExists(ctx, "Account Confirmation", tenant)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeleteTemplate_BlankInputTouchesNothing(t *testing.T) {
	for _, tc := range []struct{ typ, locale string }{
		{"", "en_US"},
		{"   ", "en_US"},
		{"Account Lock", ""},
		{"Account Lock", "\t"},
	} {
		spy := newSpy()
		err := New(spy).DeleteTemplate(context.Background(), tc.typ, tc.locale, tenant)
		if !IsClient(err) {
			t.Fatalf("%+v: expected client error, got %v", tc, err)
		}
		if spy.Total() != 0 {
			t.Fatalf("%+v: expected no store calls", tc)
		}
	}
}

func TestDeleteTemplate_SkipsLocaleBlacklist(t *testing.T) {
	spy := newSpy()
	// "en;US" no pasa ValidateLocale pero DeleteTemplate solo exige no-vacío.
	require.NoError(t, New(spy).DeleteTemplate(context.Background(), "Account Lock", "en;US", tenant))
	require.Equal(t, 1, spy.Calls("delete"))
}

func TestDeleteTemplate_CannotEscapeTypeDirectory(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())
	require.NoError(t, m.AddTemplate(ctx, sampleTemplate("Account Lock", DefaultLocale), tenant))

	err := m.DeleteTemplate(ctx, "..", "en_US", tenant)
	require.True(t, IsClient(err), "got %v", err)
	err = m.DeleteTemplate(ctx, "Account Lock", "..", tenant)
	require.True(t, IsClient(err), "got %v", err)

	ok, err := m.TemplateExists(ctx, "Account Lock", DefaultLocale, tenant)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeleteTemplateType_RemovesTranslationsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())

	require.NoError(t, m.AddTemplate(ctx, sampleTemplate("Account Disable", "en_US"), tenant))
	require.NoError(t, m.AddTemplate(ctx, sampleTemplate("Account Disable", "es_AR"), tenant))

	require.NoError(t, m.DeleteTemplateType(ctx, "Account Disable", tenant))
	require.NoError(t, m.DeleteTemplateType(ctx, "Account Disable", tenant))

	ok, err := m.TemplateExists(ctx, "Account Disable", "es_AR", tenant)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = m.TemplateTypeExists(ctx, "Account Disable", tenant)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListTemplateTypes(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())

	types, err := m.ListTemplateTypes(ctx, tenant)
	require.NoError(t, err)
	require.Empty(t, types, "missing root must list as empty")

	require.NoError(t, m.AddTemplateType(ctx, "Password Reset", tenant))
	require.NoError(t, m.AddTemplateType(ctx, "Account Lock", tenant))

	types, err = m.ListTemplateTypes(ctx, tenant)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Password Reset", "Account Lock"}, types)
}

func TestListTemplateTypes_StoreFailure(t *testing.T) {
	spy := newSpy()
	spy.getErr = errors.New("timeout")

	_, err := New(spy).ListTemplateTypes(context.Background(), tenant)
	require.True(t, IsServer(err), "got %v", err)
}

func TestListAllTemplates_SkipsUndecodable(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m := New(store)

	require.NoError(t, m.AddTemplate(ctx, sampleTemplate("Account Lock", "en_US"), tenant))
	require.NoError(t, m.AddTemplate(ctx, sampleTemplate("Account Lock", "es_AR"), tenant))

	// Recurso roto: sin subject/body/footer
	broken := repository.NewResource()
	broken.SetProperty(PropDisplayName, "Account Lock")
	broken.SetProperty(PropLocale, "pt_BR")
	require.NoError(t, store.Put(ctx, broken, repository.LocaleKey(tenant, "/identity/email/accountlock", "pt_BR")))

	list, err := m.ListAllTemplates(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, list, 2)

	locales := []string{list[0].Locale, list[1].Locale}
	require.ElementsMatch(t, []string{"en_US", "es_AR"}, locales)
}

func TestListAllTemplates_EmptyTenant(t *testing.T) {
	list, err := New(newSpy()).ListAllTemplates(context.Background(), "nobody.com")
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestEnsureTemplateType(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())

	created, err := m.EnsureTemplateType(ctx, "Account Id Recovery", tenant)
	require.NoError(t, err)
	require.True(t, created)

	created, err = m.EnsureTemplateType(ctx, "Account Id Recovery", tenant)
	require.NoError(t, err)
	require.False(t, created)
}

func TestPutTemplate_ConflictMapsToAlreadyExists(t *testing.T) {
	spy := newSpy()
	spy.putErr = repository.ErrConflict

	err := New(spy).PutTemplate(context.Background(), sampleTemplate("Account Lock", "en_US"), tenant)
	require.True(t, IsAlreadyExists(err), "got %v", err)
}

func TestExistsProbesPropagateFailures(t *testing.T) {
	spy := newSpy()
	spy.existsErr = errors.New("connection reset")
	m := New(spy)
	ctx := context.Background()

	_, err := m.TemplateExists(ctx, "Account Lock", "en_US", tenant)
	require.True(t, IsServer(err), "got %v", err)

	_, err = m.TemplateTypeExists(ctx, "Account Lock", tenant)
	require.True(t, IsServer(err), "got %v", err)

	_, err = m.TemplateExists(ctx, "Account Lock", "", tenant)
	require.True(t, IsClient(err), "got %v", err)
}

func TestExistsProbes_BlankTypeIsClientError(t *testing.T) {
	spy := newSpy()
	m := New(spy)
	ctx := context.Background()
	require.NoError(t, m.AddTemplateType(ctx, "Foo", tenant))
	before := spy.Total()

	for _, name := range []string{"", "   ", "\t\n"} {
		ok, err := m.TemplateTypeExists(ctx, name, tenant)
		require.True(t, IsClient(err), "%q: got %v", name, err)
		require.False(t, ok)

		ok, err = m.TemplateExists(ctx, name, "en_US", tenant)
		require.True(t, IsClient(err), "%q: got %v", name, err)
		require.False(t, ok)
	}
	require.Equal(t, before, spy.Total(), "blank names must not reach the store")
}

func TestSeedDefaults_PopulatesOnceThenNoop(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())
	defaults := DefaultTemplates()

	report, err := m.SeedDefaults(ctx, tenant)
	require.NoError(t, err)
	require.False(t, report.Aborted)
	require.Len(t, report.Added, len(defaults))
	require.Empty(t, report.Skipped)

	var names []string
	for _, d := range defaults {
		names = append(names, d.TemplateDisplayName)
	}
	types, err := m.ListTemplateTypes(ctx, tenant)
	require.NoError(t, err)
	require.ElementsMatch(t, names, types)

	list, err := m.ListAllTemplates(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, list, len(defaults))

	report, err = m.SeedDefaults(ctx, tenant)
	require.NoError(t, err)
	require.Empty(t, report.Added)
	require.ElementsMatch(t, names, report.Skipped)

	list, err = m.ListAllTemplates(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, list, len(defaults), "re-seeding must not duplicate")
}

func TestSeedDefaults_KeepsCustomizedTypes(t *testing.T) {
	ctx := context.Background()
	m := New(newSpy())

	custom := sampleTemplate("Password Reset", DefaultLocale)
	custom.Subject = "custom"
	require.NoError(t, m.AddTemplate(ctx, custom, tenant))

	_, err := m.SeedDefaults(ctx, tenant)
	require.NoError(t, err)

	got, err := m.GetTemplate(ctx, "Password Reset", DefaultLocale, tenant)
	require.NoError(t, err)
	require.Equal(t, "custom", got.Subject)
}

func TestSeedDefaults_ProbeFailureAbortsQuietly(t *testing.T) {
	spy := newSpy()
	spy.existsErr = errors.New("registry down")

	report, err := New(spy).SeedDefaults(context.Background(), tenant)
	require.NoError(t, err)
	require.True(t, report.Aborted)
	require.Empty(t, report.Added)
	require.Zero(t, spy.Calls("put"))
}

func TestSeedDefaults_PutFailurePropagates(t *testing.T) {
	spy := newSpy()
	spy.putErr = errors.New("read-only file system")

	_, err := New(spy).SeedDefaults(context.Background(), tenant)
	require.True(t, IsServer(err), "got %v", err)
}

func TestOptions(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m := New(store,
		WithDefaultLocale("es_AR"),
		WithRootPath("/custom/mail/"),
		WithDefaults([]EmailTemplate{*sampleTemplate("Welcome", "es_AR")}),
	)
	require.Equal(t, "es_AR", m.DefaultLocale())

	report, err := m.SeedDefaults(ctx, tenant)
	require.NoError(t, err)
	require.Equal(t, []string{"Welcome"}, report.Added)

	ok, err := store.Exists(ctx, repository.LocaleKey(tenant, "/custom/mail/welcome", "es_ar"))
	require.NoError(t, err)
	require.True(t, ok)

	got, err := m.GetTemplate(ctx, "Welcome", "en_US", tenant)
	require.NoError(t, err)
	require.Equal(t, "es_AR", got.Locale)
}
