// Package apitest: util tes handler (fiber app.Test + envelope JSON).
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
)

// Envelope: bentuk response standar (sukses & error).
type Envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	ErrorCode  string              `json:"error_code"`
	Data       json.RawMessage     `json:"data"`
	Pagination map[string]any      `json:"pagination"`
	Errors     map[string][]string `json:"errors"`
}

// NewApp: fiber app dengan ErrorHandler standar + identitas tenant palsu.
func NewApp(tenant string, roles ...string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: helper.ErrorHandler,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})
	app.Use(func(c *fiber.Ctx) error {
		if tenant != "" {
			c.Locals(helperAuth.LocTenantCode, tenant)
		}
		c.Locals(helperAuth.LocRoles, roles)
		c.Locals(helperAuth.LocUserID, "user-1")
		return c.Next()
	})
	return app
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
	Env    Envelope
}

// Decode: isi data ke v.
func (r Response) Decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(r.Env.Data, v), string(r.Body))
}

func do(t *testing.T, app *fiber.App, req *http.Request) Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := Response{Status: resp.StatusCode, Header: resp.Header, Body: body}
	if len(body) > 0 && bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		_ = sonic.Unmarshal(body, &out.Env)
	}
	return out
}

// JSON: request dengan body JSON (body nil = tanpa body).
func JSON(t *testing.T, app *fiber.App, method, path string, body any) Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return do(t, app, req)
}

// Upload: multipart satu file (field "file") + field tambahan.
func Upload(t *testing.T, app *fiber.App, method, path, filename string, data []byte, fields map[string]string) Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return do(t, app, req)
}
