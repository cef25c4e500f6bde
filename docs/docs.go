// Package docs registra la especificación OpenAPI de la API para swag y la UI de /docs.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var spec []byte

// SwaggerInfo metadatos de la especificación.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Title:            "eMed Onboarding API",
	Description:      "Onboarding B2B: aprovisionamiento de empresas, códigos de inscripción, canje y webhooks de socios.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  string(spec),
}

// JSON devuelve la especificación tal como se sirve en /docs.
func JSON() []byte { return spec }

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
