package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
)

type documentServiceMock struct {
	category   string
	employeeID string
	received   map[string]string
	mimes      map[string]string
	rejectName string
	download   *service.DocumentDownload
}

func (m *documentServiceMock) UploadBatch(_ context.Context, _ string, employeeID, _ string, category string, uploads []service.DocumentUpload) (*models.BatchUploadResult, error) {
	m.category = category
	m.employeeID = employeeID
	m.received = map[string]string{}
	m.mimes = map[string]string{}
	result := &models.BatchUploadResult{}
	for _, u := range uploads {
		data, err := io.ReadAll(u.Content)
		if err != nil {
			return nil, err
		}
		m.received[u.Filename] = string(data)
		m.mimes[u.Filename] = u.MimeType
		item := models.BatchUploadItem{Filename: u.Filename}
		if u.Filename == m.rejectName {
			item.Error = "unsupported file type"
			result.Failed++
		} else {
			item.Document = &models.Document{ID: "doc-" + u.Filename, Filename: u.Filename}
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (m *documentServiceMock) List(_ context.Context, _ string, employeeID, category string) ([]models.Document, error) {
	m.employeeID = employeeID
	m.category = category
	return []models.Document{}, nil
}

func (m *documentServiceMock) DownloadLink(context.Context, string, string) (*service.DocumentLink, error) {
	return &service.DocumentLink{URL: "/api/v1/documents/download/tok"}, nil
}

func (m *documentServiceMock) Download(context.Context, string) (*service.DocumentDownload, error) {
	return m.download, nil
}

func (m *documentServiceMock) Delete(context.Context, string, string) error { return nil }

func multipartBody(t *testing.T, category string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if category != "" {
		require.NoError(t, writer.WriteField("category", category))
	}
	for name, content := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		header.Set("Content-Type", "text/plain")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestDocumentHandlerUploadAllSucceeded(t *testing.T) {
	svc := &documentServiceMock{}
	handler := NewDocumentHandler(svc)
	body, contentType := multipartBody(t, "certificados", map[string]string{"a.txt": "alpha", "b.txt": "beta"})
	c, w := newGinContext(http.MethodPost, "/employees/emp-1/documents", body.Bytes())
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{ginParam("id", "emp-1")}
	asManager(c)

	handler.Upload(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "certificados", svc.category)
	assert.Equal(t, "emp-1", svc.employeeID)
	assert.Equal(t, "alpha", svc.received["a.txt"])
	assert.Equal(t, "beta", svc.received["b.txt"])
	assert.Equal(t, "text/plain", svc.mimes["a.txt"])
}

func TestDocumentHandlerUploadPartialFailure(t *testing.T) {
	svc := &documentServiceMock{rejectName: "b.txt"}
	handler := NewDocumentHandler(svc)
	body, contentType := multipartBody(t, "", map[string]string{"a.txt": "alpha", "b.txt": "beta"})
	c, w := newGinContext(http.MethodPost, "/employees/emp-1/documents", body.Bytes())
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{ginParam("id", "emp-1")}
	asManager(c)

	handler.Upload(c)

	require.Equal(t, http.StatusMultiStatus, w.Code)
	var result models.BatchUploadResult
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
}

func TestDocumentHandlerUploadRequiresFiles(t *testing.T) {
	handler := NewDocumentHandler(&documentServiceMock{})
	body, contentType := multipartBody(t, "geral", nil)
	c, w := newGinContext(http.MethodPost, "/employees/emp-1/documents", body.Bytes())
	c.Request.Header.Set("Content-Type", contentType)
	asManager(c)

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerLinkAndDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cert.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)
	svc := &documentServiceMock{download: &service.DocumentDownload{File: file, Filename: "cert.pdf", MimeType: "application/pdf", SizeBytes: 4}}
	handler := NewDocumentHandler(svc)

	c, w := newGinContext(http.MethodGet, "/documents/doc-1/download", nil)
	c.Params = gin.Params{ginParam("id", "doc-1")}
	asManager(c)
	handler.Link(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), "/documents/download/tok")

	c, w = newGinContext(http.MethodGet, "/documents/download/tok", nil)
	c.Params = gin.Params{ginParam("token", "tok")}
	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}
