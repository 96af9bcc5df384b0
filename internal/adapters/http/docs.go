package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// OpenAPIPath is where the API description is read from, relative to the working directory.
var OpenAPIPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>GeoMatch API · Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>html{box-sizing:border-box}*,*::before,*::after{box-sizing:inherit}body{margin:0;background:#fafafa}</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout',
    });
  </script>
</body>
</html>`

// SetupDocs registers Swagger UI at /docs and the OpenAPI description at
// /docs/openapi.yaml and /docs/openapi.json. The description is loaded and
// validated once; when that fails the document routes answer 404.
func SetupDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(swaggerUIHTML)
	})

	yamlDoc, jsonDoc, err := loadOpenAPI(OpenAPIPath)
	if err != nil {
		slog.Warn("openapi description unavailable", "path", OpenAPIPath, "error", err)
	}

	serve := func(doc []byte, contentType string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if doc == nil {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "openapi description not found"})
			}
			c.Set("Content-Type", contentType)
			return c.Send(doc)
		}
	}
	app.Get("/docs/openapi.yaml", serve(yamlDoc, "application/yaml"))
	app.Get("/docs/openapi.json", serve(jsonDoc, fiber.MIMEApplicationJSON))
}

func loadOpenAPI(path string) ([]byte, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("validate: %w", err)
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, err
	}
	return data, jsonDoc, nil
}
