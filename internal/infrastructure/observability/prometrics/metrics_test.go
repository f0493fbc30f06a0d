package prometrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/observability/prometrics"
)

func TestStockMetrics_CuentaMovimientosYRechazos(t *testing.T) {
	reg := prometrics.New("inventario")
	m := prometrics.NewStockMetrics(reg)

	m.MovementRecorded(entity.MovementEntry, 5)
	m.MovementRecorded(entity.MovementEntry, 3)
	m.MovementRejected(entity.MovementExit, "insufficient_stock")

	movements := reg.Counter("stock", "movements_total", "")
	units := reg.Counter("stock", "units_total", "")
	rejected := reg.Counter("stock", "rejections_total", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(movements.WithLabelValues("ENTRADA")))
	assert.Equal(t, 8.0, testutil.ToFloat64(units.WithLabelValues("ENTRADA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rejected.WithLabelValues("SALIDA", "insufficient_stock")))
}

func TestRegistry_MismoNombreMismoContador(t *testing.T) {
	reg := prometrics.New("inventario")
	a := reg.Counter("x", "y_total", "ayuda")
	b := reg.Counter("x", "y_total", "ayuda")
	assert.Same(t, a, b)
}

func TestFiberMiddleware_YHandler(t *testing.T) {
	reg := prometrics.New("inventario")
	app := fiber.New()
	app.Use(prometrics.FiberMiddleware(reg))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	requests := reg.Counter("http", "requests_total", "")
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("GET", "/ping", "200")))

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "inventario_http_requests_total")
}
