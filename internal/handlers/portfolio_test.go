package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/XaidenLabs/myreliq/internal/guard"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"log/slog"
)

// memPortfolioStore keeps everything in maps so handler behavior can be
// tested without postgres. Not-found is reported the same way the real
// store does, with pgx.ErrNoRows.
type memPortfolioStore struct {
	profiles    map[uuid.UUID]*storage.Profile
	identities  map[uuid.UUID]*storage.Identity
	roles       map[uuid.UUID]*storage.Role
	milestones  map[uuid.UUID]*storage.Milestone
	credentials map[uuid.UUID]*storage.Credential
	versions    []storage.PortfolioVersion
}

func newMemPortfolioStore() *memPortfolioStore {
	return &memPortfolioStore{
		profiles:    make(map[uuid.UUID]*storage.Profile),
		identities:  make(map[uuid.UUID]*storage.Identity),
		roles:       make(map[uuid.UUID]*storage.Role),
		milestones:  make(map[uuid.UUID]*storage.Milestone),
		credentials: make(map[uuid.UUID]*storage.Credential),
	}
}

func (m *memPortfolioStore) GetProfileByUserID(_ context.Context, userID uuid.UUID) (*storage.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *memPortfolioStore) GetProfileBySlug(_ context.Context, slug string) (*storage.Profile, error) {
	for _, p := range m.profiles {
		if p.ShareSlug != nil && *p.ShareSlug == slug {
			return p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memPortfolioStore) UpsertProfile(_ context.Context, userID uuid.UUID, upd storage.ProfileUpdate) (*storage.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		p = &storage.Profile{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
		m.profiles[userID] = p
	}
	p.FullName = upd.FullName
	p.Headline = upd.Headline
	p.Bio = upd.Bio
	if upd.ShareSlug != nil {
		p.ShareSlug = upd.ShareSlug
	}
	p.UpdatedAt = time.Now()
	return p, nil
}

func (m *memPortfolioStore) ListIdentities(_ context.Context, userID uuid.UUID) ([]storage.Identity, error) {
	out := []storage.Identity{}
	for _, i := range m.identities {
		if i.UserID == userID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (m *memPortfolioStore) GetIdentityBySlug(_ context.Context, userID uuid.UUID, slug string) (*storage.Identity, error) {
	for _, i := range m.identities {
		if i.UserID == userID && i.Slug == slug {
			return i, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memPortfolioStore) CreateIdentity(_ context.Context, userID uuid.UUID, in storage.IdentityInput) (*storage.Identity, error) {
	for _, i := range m.identities {
		if i.UserID == userID && i.Slug == in.Slug {
			return nil, storage.ErrDuplicateSlug
		}
	}
	identity := &storage.Identity{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      in.Name,
		Slug:      in.Slug,
		IsPrimary: in.IsPrimary,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.identities[identity.ID] = identity
	return identity, nil
}

func (m *memPortfolioStore) UpdateIdentity(_ context.Context, userID, id uuid.UUID, in storage.IdentityInput, mintAddress, metadataURI *string) (*storage.Identity, error) {
	i, ok := m.identities[id]
	if !ok || i.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	i.Name = in.Name
	if mintAddress != nil {
		i.MintAddress = mintAddress
	}
	if metadataURI != nil {
		i.MetadataURI = metadataURI
	}
	i.UpdatedAt = time.Now()
	return i, nil
}

func (m *memPortfolioStore) DeleteIdentity(_ context.Context, userID, id uuid.UUID) (bool, error) {
	i, ok := m.identities[id]
	if !ok || i.UserID != userID {
		return false, nil
	}
	delete(m.identities, id)
	return true, nil
}

func (m *memPortfolioStore) ListRoles(_ context.Context, userID uuid.UUID, identityID *uuid.UUID) ([]storage.Role, error) {
	out := []storage.Role{}
	for _, r := range m.roles {
		if r.UserID != userID {
			continue
		}
		if identityID != nil && r.IdentityID != *identityID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *memPortfolioStore) ListPublicRolesByUser(_ context.Context, userID uuid.UUID) ([]storage.Role, error) {
	out := []storage.Role{}
	for _, r := range m.roles {
		if r.UserID == userID && r.IsPublic {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memPortfolioStore) CreateRole(_ context.Context, userID uuid.UUID, in storage.RoleInput) (*storage.Role, error) {
	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	role := &storage.Role{
		ID:           uuid.New(),
		UserID:       userID,
		IdentityID:   in.IdentityID,
		Title:        in.Title,
		Organization: in.Organization,
		StartDate:    in.StartDate,
		WorkMode:     in.WorkMode,
		IsPublic:     isPublic,
	}
	m.roles[role.ID] = role
	return role, nil
}

func (m *memPortfolioStore) UpdateRole(_ context.Context, userID, id uuid.UUID, in storage.RoleInput) (*storage.Role, error) {
	r, ok := m.roles[id]
	if !ok || r.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	r.Title = in.Title
	r.Organization = in.Organization
	return r, nil
}

func (m *memPortfolioStore) DeleteRole(_ context.Context, userID, id uuid.UUID) (bool, error) {
	r, ok := m.roles[id]
	if !ok || r.UserID != userID {
		return false, nil
	}
	delete(m.roles, id)
	return true, nil
}

func (m *memPortfolioStore) ListMilestones(_ context.Context, userID uuid.UUID, roleID *uuid.UUID) ([]storage.Milestone, error) {
	out := []storage.Milestone{}
	for _, ms := range m.milestones {
		if ms.UserID != userID {
			continue
		}
		if roleID != nil && ms.RoleID != *roleID {
			continue
		}
		out = append(out, *ms)
	}
	return out, nil
}

func (m *memPortfolioStore) CreateMilestone(_ context.Context, userID uuid.UUID, in storage.MilestoneInput) (*storage.Milestone, error) {
	ms := &storage.Milestone{
		ID:         uuid.New(),
		UserID:     userID,
		RoleID:     in.RoleID,
		Title:      in.Title,
		AchievedAt: in.AchievedAt,
	}
	m.milestones[ms.ID] = ms
	return ms, nil
}

func (m *memPortfolioStore) UpdateMilestone(_ context.Context, userID, id uuid.UUID, in storage.MilestoneInput) (*storage.Milestone, error) {
	ms, ok := m.milestones[id]
	if !ok || ms.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	ms.Title = in.Title
	return ms, nil
}

func (m *memPortfolioStore) DeleteMilestone(_ context.Context, userID, id uuid.UUID) (bool, error) {
	ms, ok := m.milestones[id]
	if !ok || ms.UserID != userID {
		return false, nil
	}
	delete(m.milestones, id)
	return true, nil
}

func (m *memPortfolioStore) ListCredentials(_ context.Context, userID uuid.UUID) ([]storage.Credential, error) {
	out := []storage.Credential{}
	for _, cr := range m.credentials {
		if cr.UserID == userID {
			out = append(out, *cr)
		}
	}
	return out, nil
}

func (m *memPortfolioStore) CreateCredential(_ context.Context, userID uuid.UUID, in storage.CredentialInput) (*storage.Credential, error) {
	cr := &storage.Credential{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       in.Title,
		MetadataURI: in.MetadataURI,
		Status:      in.Status,
	}
	if cr.Status == "" {
		cr.Status = storage.CredentialPending
	}
	m.credentials[cr.ID] = cr
	return cr, nil
}

func (m *memPortfolioStore) UpdateCredential(_ context.Context, userID, id uuid.UUID, in storage.CredentialInput) (*storage.Credential, error) {
	cr, ok := m.credentials[id]
	if !ok || cr.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	cr.Title = in.Title
	return cr, nil
}

func (m *memPortfolioStore) DeleteCredential(_ context.Context, userID, id uuid.UUID) (bool, error) {
	cr, ok := m.credentials[id]
	if !ok || cr.UserID != userID {
		return false, nil
	}
	delete(m.credentials, id)
	return true, nil
}

func (m *memPortfolioStore) CreatePortfolioVersion(_ context.Context, userID uuid.UUID, jsonHash string, solanaTx *string, isPublic bool) (*storage.PortfolioVersion, error) {
	next := 1
	for _, v := range m.versions {
		if v.UserID == userID && v.Version >= next {
			next = v.Version + 1
		}
	}
	version := storage.PortfolioVersion{
		ID:        uuid.New(),
		UserID:    userID,
		Version:   next,
		JSONHash:  jsonHash,
		SolanaTx:  solanaTx,
		IsPublic:  isPublic,
		CreatedAt: time.Now(),
	}
	m.versions = append(m.versions, version)
	return &version, nil
}

func (m *memPortfolioStore) ListPortfolioVersions(_ context.Context, userID uuid.UUID) ([]storage.PortfolioVersion, error) {
	out := []storage.PortfolioVersion{}
	for _, v := range m.versions {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

// injectUser stands in for the guard so handler logic is tested in isolation.
func injectUser(user *storage.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(guard.ContextUserKey, user)
		c.Next()
	}
}

func newPortfolioRouter(store *memPortfolioStore, user *storage.User) *gin.Engine {
	h := &PortfolioHandler{
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  &fakeClock{t: time.Now()},
	}
	r := gin.New()
	h.RegisterRoutes(r, injectUser(user))
	return r
}

func TestGetProfileNoneYet(t *testing.T) {
	user := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	r := newPortfolioRouter(newMemPortfolioStore(), user)

	w := performJSON(r, http.MethodGet, "/api/profile", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decodeBody(t, w); body["data"] != nil {
		t.Errorf("data = %v, want null", body["data"])
	}
}

func TestUpdateProfileMintsShareSlug(t *testing.T) {
	user := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	store := newMemPortfolioStore()
	r := newPortfolioRouter(store, user)

	w := performJSON(r, http.MethodPut, "/api/profile", `{"fullName":"Ada Lovelace"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	data, _ := decodeBody(t, w)["data"].(map[string]any)
	slug, _ := data["shareSlug"].(string)
	if !regexp.MustCompile(`^ada-lovelace-[a-z0-9]{5}$`).MatchString(slug) {
		t.Fatalf("shareSlug = %q, want ada-lovelace-<suffix>", slug)
	}

	// A second save must not re-mint the slug.
	w = performJSON(r, http.MethodPut, "/api/profile", `{"fullName":"Ada King"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("second save status = %d", w.Code)
	}
	data, _ = decodeBody(t, w)["data"].(map[string]any)
	if data["shareSlug"] != slug {
		t.Errorf("shareSlug changed on rename: %v -> %v", slug, data["shareSlug"])
	}
}

func TestUpdateProfileRequiresName(t *testing.T) {
	user := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	r := newPortfolioRouter(newMemPortfolioStore(), user)

	w := performJSON(r, http.MethodPut, "/api/profile", `{"headline":"no name"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateIdentitySlugCollisionRetries(t *testing.T) {
	user := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	store := newMemPortfolioStore()
	r := newPortfolioRouter(store, user)

	w := performJSON(r, http.MethodPost, "/api/identities", `{"name":"Design Work"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	data, _ := decodeBody(t, w)["data"].(map[string]any)
	if data["slug"] != "design-work" {
		t.Fatalf("slug = %v, want design-work", data["slug"])
	}

	// Same name again: the handler retries with a numeric suffix.
	w = performJSON(r, http.MethodPost, "/api/identities", `{"name":"Design Work"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("collision status = %d, body %s", w.Code, w.Body.String())
	}
	data, _ = decodeBody(t, w)["data"].(map[string]any)
	slug, _ := data["slug"].(string)
	if !regexp.MustCompile(`^design-work-\d{1,3}$`).MatchString(slug) {
		t.Errorf("retried slug = %q, want design-work-<n>", slug)
	}
}

func TestUpdateIdentityOwnership(t *testing.T) {
	owner := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	intruder := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	store := newMemPortfolioStore()

	identity, err := store.CreateIdentity(context.Background(), owner.ID, storage.IdentityInput{Name: "Mine", Slug: "mine"})
	if err != nil {
		t.Fatal(err)
	}

	r := newPortfolioRouter(store, intruder)
	body, _ := json.Marshal(map[string]any{"id": identity.ID, "name": "Stolen"})
	w := performJSON(r, http.MethodPut, "/api/identities", string(body))
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-user update status = %d, want 404", w.Code)
	}
	if store.identities[identity.ID].Name != "Mine" {
		t.Error("identity was modified by a non-owner")
	}
}

func TestDeleteIdentity(t *testing.T) {
	user := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	store := newMemPortfolioStore()
	identity, _ := store.CreateIdentity(context.Background(), user.ID, storage.IdentityInput{Name: "X", Slug: "x"})
	r := newPortfolioRouter(store, user)

	w := performJSON(r, http.MethodDelete, "/api/identities?id="+identity.ID.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	w = performJSON(r, http.MethodDelete, "/api/identities?id="+identity.ID.String(), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
	w = performJSON(r, http.MethodDelete, "/api/identities", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing id status = %d, want 400", w.Code)
	}
}

func TestPublicPortfolioFiltersPrivateRoles(t *testing.T) {
	user := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	store := newMemPortfolioStore()
	slug := "ada-12345"
	store.UpsertProfile(context.Background(), user.ID, storage.ProfileUpdate{FullName: "Ada", ShareSlug: &slug})

	identity, _ := store.CreateIdentity(context.Background(), user.ID, storage.IdentityInput{Name: "Eng", Slug: "eng"})
	public := true
	private := false
	store.CreateRole(context.Background(), user.ID, storage.RoleInput{IdentityID: identity.ID, Title: "Visible", IsPublic: &public})
	store.CreateRole(context.Background(), user.ID, storage.RoleInput{IdentityID: identity.ID, Title: "Hidden", IsPublic: &private})

	r := newPortfolioRouter(store, user)
	w := performJSON(r, http.MethodGet, "/api/portfolio/"+slug, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data portfolioView `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.Roles) != 1 || resp.Data.Roles[0].Title != "Visible" {
		t.Errorf("public roles = %+v, want only Visible", resp.Data.Roles)
	}

	w = performJSON(r, http.MethodGet, "/api/portfolio/nobody-here", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want 404", w.Code)
	}
}

func TestPublicIdentityPortfolioScopesRolesAndMilestones(t *testing.T) {
	user := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	store := newMemPortfolioStore()
	slug := "ada-12345"
	store.UpsertProfile(context.Background(), user.ID, storage.ProfileUpdate{FullName: "Ada", ShareSlug: &slug})

	eng, _ := store.CreateIdentity(context.Background(), user.ID, storage.IdentityInput{Name: "Eng", Slug: "eng"})
	art, _ := store.CreateIdentity(context.Background(), user.ID, storage.IdentityInput{Name: "Art", Slug: "art"})
	engRole, _ := store.CreateRole(context.Background(), user.ID, storage.RoleInput{IdentityID: eng.ID, Title: "Engineer"})
	artRole, _ := store.CreateRole(context.Background(), user.ID, storage.RoleInput{IdentityID: art.ID, Title: "Artist"})
	store.CreateMilestone(context.Background(), user.ID, storage.MilestoneInput{RoleID: engRole.ID, Title: "Shipped"})
	store.CreateMilestone(context.Background(), user.ID, storage.MilestoneInput{RoleID: artRole.ID, Title: "Exhibited"})

	r := newPortfolioRouter(store, user)
	w := performJSON(r, http.MethodGet, "/api/portfolio/"+slug+"/eng", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data portfolioView `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.Roles) != 1 || resp.Data.Roles[0].Title != "Engineer" {
		t.Errorf("roles = %+v, want only Engineer", resp.Data.Roles)
	}
	if len(resp.Data.Milestones) != 1 || resp.Data.Milestones[0].Title != "Shipped" {
		t.Errorf("milestones = %+v, want only Shipped", resp.Data.Milestones)
	}
	if len(resp.Data.Identities) != 1 || resp.Data.Identities[0].Slug != "eng" {
		t.Errorf("identities = %+v, want only eng", resp.Data.Identities)
	}

	w = performJSON(r, http.MethodGet, "/api/portfolio/"+slug+"/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown identity status = %d, want 404", w.Code)
	}
}

func TestPublishVersion(t *testing.T) {
	user := &storage.User{ID: uuid.New(), Role: storage.RoleUser}
	store := newMemPortfolioStore()
	r := newPortfolioRouter(store, user)

	// Publishing before the profile exists is a client error.
	w := performJSON(r, http.MethodPost, "/api/portfolio/versions", `{"isPublic":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("no-profile publish status = %d, want 400", w.Code)
	}

	slug := "ada-12345"
	store.UpsertProfile(context.Background(), user.ID, storage.ProfileUpdate{FullName: "Ada", ShareSlug: &slug})

	w = performJSON(r, http.MethodPost, "/api/portfolio/versions", `{"isPublic":true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	data, _ := decodeBody(t, w)["data"].(map[string]any)
	if data["version"] != float64(1) {
		t.Errorf("version = %v, want 1", data["version"])
	}
	hash, _ := data["jsonHash"].(string)
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(hash) {
		t.Errorf("jsonHash = %q, want 64 hex chars", hash)
	}

	w = performJSON(r, http.MethodPost, "/api/portfolio/versions", `{"isPublic":false}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("second publish status = %d", w.Code)
	}
	data, _ = decodeBody(t, w)["data"].(map[string]any)
	if data["version"] != float64(2) {
		t.Errorf("version = %v, want 2", data["version"])
	}
}
