package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/njprem/lighthouse-api/internal/util"
)

const DefaultSwaggerSpecPath = "docs/swagger.yaml"

// RegisterSwagger serves the OpenAPI document at specPath under /swagger.
func RegisterSwagger(e *echo.Echo, specPath string, logger *slog.Logger) {
	if specPath == "" {
		specPath = DefaultSwaggerSpecPath
	}
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		data, err := os.ReadFile(specPath)
		if err != nil {
			logger.Error("load swagger spec", slog.String("path", specPath), slog.Any("error", err))
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load swagger spec"))
		}
		jsonSpec, err := yaml.YAMLToJSON(data)
		if err != nil {
			logger.Error("convert swagger spec", slog.Any("error", err))
			return c.JSON(http.StatusInternalServerError, util.Error("unable to parse swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
