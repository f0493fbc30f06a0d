package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/sistema-inventario/internal/application/auth"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/export"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/jsonstore"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/observability/prometrics"
	apphttp "github.com/jhoicas/sistema-inventario/internal/interfaces/http"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

// newAPI arma la API completa sobre un directorio temporal con el admin por defecto (admin/123).
func newAPI(t *testing.T) *apiClient {
	t.Helper()
	log := logger.Nop()
	store, err := jsonstore.Open(t.TempDir(), log)
	require.NoError(t, err)

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log).
		WithHashCost(bcrypt.MinCost)
	_, err = authUC.EnsureDefaultAdmin(t.Context(), "123")
	require.NoError(t, err)

	catalog := inventory.NewCatalogUseCase(store, store.Products(), log)
	reg := prometrics.New("inventario_test")
	deps := apphttp.RouterDeps{
		AuthUC:    authUC,
		UserUC:    auth.NewUserUseCase(store.Users(), log).WithHashCost(bcrypt.MinCost),
		CatalogUC: catalog,
		Engine:    inventory.NewStockEngine(store, prometrics.NewStockMetrics(reg), log),
		Ledger:    inventory.NewLedgerUseCase(store.Movements(), log),
		ReportUC:  inventory.NewReportUseCase(catalog, 5, export.CSVWriter{}, export.TextReport{}, export.XLSXWriter{}),
		Metrics:   reg,
		JWTSecret: testJWTSecret,
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return &apiClient{t: t, app: app}
}

func (a *apiClient) do(method, path, token string, body any) (*http.Response, []byte) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, out
}

func (a *apiClient) login(username, password string) string {
	a.t.Helper()
	resp, body := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(body, &out))
	return out.Token
}

func decodeMap(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m), string(body))
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesInvalidas(t *testing.T) {
	api := newAPI(t)
	resp, body := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "UNAUTHORIZED")
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	api := newAPI(t)
	resp, _ := api.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthYMetrics(t *testing.T) {
	api := newAPI(t)
	resp, _ := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "inventario_test_http_requests_total")
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo y movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujoProducto_CrearMoverHistorialEliminar(t *testing.T) {
	api := newAPI(t)
	tok := api.login("admin", "123")

	resp, body := api.do(http.MethodPost, "/api/products", tok, map[string]any{
		"sku": "p001", "nombre": "Tornillo", "categoria": "Ferretería", "precio": "2.50", "cantidad": 10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decodeMap(t, body)
	assert.Equal(t, "P001", created["sku"])
	assert.Equal(t, "25", created["valor"])

	// SKU duplicado (normalizado) → 409
	resp, body = api.do(http.MethodPost, "/api/products", tok, map[string]any{
		"sku": " P001 ", "nombre": "Otro", "categoria": "X", "precio": "1", "cantidad": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "DUPLICATE_SKU")

	// SALIDA válida
	resp, body = api.do(http.MethodPost, "/api/products/P001/movements", tok, map[string]any{"tipo": "SALIDA", "cantidad": 4})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, float64(6), decodeMap(t, body)["stock_actual"])

	// SALIDA mayor al stock → 409 y sin cambios
	resp, body = api.do(http.MethodPost, "/api/products/P001/movements", tok, map[string]any{"tipo": "SALIDA", "cantidad": 7})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "INSUFFICIENT_STOCK")

	// Cantidad cero → 400
	resp, body = api.do(http.MethodPost, "/api/products/P001/movements", tok, map[string]any{"tipo": "ENTRADA", "cantidad": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_QUANTITY")

	// Entrada que desborda el stock → 400, la cantidad no cambia
	resp, body = api.do(http.MethodPost, "/api/products/P001/movements", tok, map[string]any{"tipo": "ENTRADA", "cantidad": int64(math.MaxInt64)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_QUANTITY")

	// Producto inexistente → 404
	resp, _ = api.do(http.MethodPost, "/api/products/UNKNOWN/movements", tok, map[string]any{"tipo": "ENTRADA", "cantidad": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = api.do(http.MethodGet, "/api/products/P001", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(6), decodeMap(t, body)["cantidad"])

	// Eliminar y consultar el historial por nombre
	resp, _ = api.do(http.MethodDelete, "/api/products/P001", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = api.do(http.MethodGet, "/api/products/Tornillo/history", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist struct {
		Items []struct {
			Type    string `json:"tipo"`
			Deleted bool   `json:"producto_eliminado"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &hist))
	require.Equal(t, 3, hist.Total)
	assert.Equal(t, "CREACION", hist.Items[0].Type)
	assert.Equal(t, "SALIDA", hist.Items[1].Type)
	assert.Equal(t, "ELIMINACION", hist.Items[2].Type)
	assert.True(t, hist.Items[2].Deleted)

	resp, body = api.do(http.MethodGet, "/api/products/P001/history?format=csv", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, strings.Count(string(body), "\n"))
}

func TestCrearProducto_ErroresDeValidacion(t *testing.T) {
	api := newAPI(t)
	tok := api.login("admin", "123")

	resp, body := api.do(http.MethodPost, "/api/products", tok, map[string]any{
		"sku": "P1", "nombre": "", "categoria": "X", "precio": "-1", "cantidad": 1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out struct {
		Code   string `json:"code"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "VALIDATION", out.Code)
	var fields []string
	for _, f := range out.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "nombre")
	assert.Contains(t, fields, "precio")
}

func TestBuscarProductos(t *testing.T) {
	api := newAPI(t)
	tok := api.login("admin", "123")
	for _, p := range []map[string]any{
		{"sku": "A1", "nombre": "Lápiz", "categoria": "Papelería", "precio": "1", "cantidad": 1},
		{"sku": "A2", "nombre": "Cuaderno", "categoria": "Papelería", "precio": "3", "cantidad": 10},
		{"sku": "B1", "nombre": "Martillo", "categoria": "Herramientas", "precio": "20", "cantidad": 2},
	} {
		resp, body := api.do(http.MethodPost, "/api/products", tok, p)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	resp, body := api.do(http.MethodGet, "/api/products?q=lapiz", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decodeMap(t, body)["total"])

	resp, body = api.do(http.MethodGet, "/api/products?q=PAPEL&field=categoria", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeMap(t, body)["total"])

	resp, _ = api.do(http.MethodGet, "/api/products?q=x&field=precio", tok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = api.do(http.MethodGet, "/api/reports/low-stock", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeMap(t, body)["total"])

	resp, body = api.do(http.MethodGet, "/api/reports/summary", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decodeMap(t, body)
	assert.Equal(t, "71", summary["valor_total"])
	assert.Equal(t, float64(13), summary["total_unidades"])

	resp, body = api.do(http.MethodGet, "/api/reports/export?format=txt", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "REPORTE DE INVENTARIO")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "reporte_inventario_")

	resp, body = api.do(http.MethodGet, "/api/reports/export?format=doc", tok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "format")
}

func TestEditarProducto_VersionObsoleta(t *testing.T) {
	api := newAPI(t)
	tok := api.login("admin", "123")
	resp, _ := api.do(http.MethodPost, "/api/products", tok, map[string]any{
		"sku": "P1", "nombre": "Uno", "categoria": "X", "precio": "1", "cantidad": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := api.do(http.MethodPut, "/api/products/P1", tok, map[string]any{"nombre": "Dos", "version": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "Dos", decodeMap(t, body)["nombre"])

	resp, body = api.do(http.MethodPut, "/api/products/P1", tok, map[string]any{"nombre": "Tres", "version": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "CONFLICT")
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios y purga (solo admin)
// ──────────────────────────────────────────────────────────────────────────────

func TestUsuarios_AdminGestionaYUserBloqueado(t *testing.T) {
	api := newAPI(t)
	admin := api.login("admin", "123")

	resp, body := api.do(http.MethodPost, "/api/users", admin, map[string]string{"username": "ana", "password": "clave", "rol": "superuser"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "user", decodeMap(t, body)["rol"])

	resp, _ = api.do(http.MethodPost, "/api/users", admin, map[string]string{"username": "ana", "password": "otra"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	ana := api.login("ana", "clave")
	resp, _ = api.do(http.MethodGet, "/api/users", ana, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = api.do(http.MethodDelete, "/api/movements", ana, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = api.do(http.MethodPut, "/api/users/ana/password", admin, map[string]string{"password": "nueva"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	api.login("ana", "nueva")

	resp, body = api.do(http.MethodDelete, "/api/users/admin", admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "SELF_DELETE")

	resp, _ = api.do(http.MethodDelete, "/api/users/ana", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = api.do(http.MethodDelete, "/api/users/ana", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPurgarHistorial(t *testing.T) {
	api := newAPI(t)
	admin := api.login("admin", "123")
	resp, _ := api.do(http.MethodPost, "/api/products", admin, map[string]any{
		"sku": "P1", "nombre": "Uno", "categoria": "X", "precio": "1", "cantidad": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = api.do(http.MethodPost, "/api/products/P1/movements", admin, map[string]any{"tipo": "entry", "cantidad": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := api.do(http.MethodGet, "/api/movements?kind=ENTRADA", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decodeMap(t, body)["total"])

	resp, body = api.do(http.MethodDelete, "/api/movements", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeMap(t, body)["eliminados"])

	// El catálogo no cambia
	resp, body = api.do(http.MethodGet, "/api/products/P1", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(7), decodeMap(t, body)["cantidad"])
}
