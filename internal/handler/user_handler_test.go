package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

type fakeUserService struct {
	lastFilter models.UserFilter
	actor      service.UserActor
	created    service.CreateUserRequest
	deactivate string
}

func (f *fakeUserService) Company(_ context.Context, companyID string) (*models.Company, error) {
	return &models.Company{ID: companyID, Name: "Acme"}, nil
}

func (f *fakeUserService) List(_ context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	f.lastFilter = filter
	return []models.User{}, models.NewPagination(filter.Page, filter.PageSize, 0), nil
}

func (f *fakeUserService) Get(_ context.Context, companyID, id string) (*models.User, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
}

func (f *fakeUserService) Create(_ context.Context, actor service.UserActor, req service.CreateUserRequest) (*models.User, error) {
	f.actor = actor
	f.created = req
	return &models.User{ID: "u-2", CompanyID: actor.CompanyID, Email: req.Email, Role: req.Role}, nil
}

func (f *fakeUserService) Update(_ context.Context, actor service.UserActor, id string, req service.UpdateUserRequest) (*models.User, error) {
	return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot change your own role or active state")
}

func (f *fakeUserService) Deactivate(_ context.Context, actor service.UserActor, id string) error {
	f.actor = actor
	f.deactivate = id
	return nil
}

func TestUserHandlerListFilters(t *testing.T) {
	svc := &fakeUserService{}
	handler := NewUserHandler(svc)
	c, w := newGinContext(http.MethodGet, "/users?role=viewer&active=true&page=2", nil)
	asManager(c)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "co-1", svc.lastFilter.CompanyID)
	require.NotNil(t, svc.lastFilter.Role)
	assert.Equal(t, models.RoleViewer, *svc.lastFilter.Role)
	require.NotNil(t, svc.lastFilter.Active)
	assert.True(t, *svc.lastFilter.Active)
	assert.Equal(t, 2, svc.lastFilter.Page)
}

func TestUserHandlerCreatePassesActor(t *testing.T) {
	svc := &fakeUserService{}
	handler := NewUserHandler(svc)
	c, w := newGinContext(http.MethodPost, "/users", mustJSON(t, service.CreateUserRequest{Email: "new@acme.com", FullName: "New", Role: models.RoleViewer, Password: "secret123"}))
	asManager(c)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", svc.actor.UserID)
	assert.Equal(t, "co-1", svc.actor.CompanyID)
	assert.Equal(t, "new@acme.com", svc.created.Email)
}

func TestUserHandlerErrors(t *testing.T) {
	handler := NewUserHandler(&fakeUserService{})

	c, w := newGinContext(http.MethodGet, "/users/u-9", nil)
	c.Params = gin.Params{ginParam("id", "u-9")}
	asManager(c)
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = newGinContext(http.MethodPut, "/users/user-1", []byte(`{"full_name":"Me","role":"VIEWER"}`))
	c.Params = gin.Params{ginParam("id", "user-1")}
	asManager(c)
	handler.Update(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = newGinContext(http.MethodGet, "/users", nil)
	handler.List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandlerDeleteAndCompany(t *testing.T) {
	svc := &fakeUserService{}
	handler := NewUserHandler(svc)

	c, _ := newGinContext(http.MethodDelete, "/users/u-3", nil)
	c.Params = gin.Params{ginParam("id", "u-3")}
	asManager(c)
	handler.Delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "u-3", svc.deactivate)

	c, w := newGinContext(http.MethodGet, "/company", nil)
	asManager(c)
	handler.Company(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), "Acme")
}
