package summary

import (
	"fmt"
	"html"
)

// Fixed documents returned when no real summary can be produced.
const (
	PlaceholderMissingCredential = "<h1>Resumen generado por IA:</h1><p>Error de configuración: La clave de la API de Gemini no está cargada.</p>"
	PlaceholderInsufficient      = "<h1>Resumen generado por IA:</h1><p>Resumen no disponible. Contenido insuficiente o irrelevante en la transcripción.</p>"
	PlaceholderEmptyResponse     = "<h1>Resumen generado por IA:</h1><p>ERROR: Respuesta de la IA completamente vacía. Verifique la API Key.</p>"
)

// Sources reported to metrics and logs.
const (
	SourceGenerated         = "generated"
	SourceMissingCredential = "missing_credential"
	SourceInsufficient      = "insufficient_content"
	SourceEmptyResponse     = "empty_response"
	SourceBackendError      = "backend_error"
)

// failurePlaceholder embeds the failure text, escaped so the document stays valid markup.
func failurePlaceholder(msg string) string {
	return fmt.Sprintf("<h1>Error de Servicio AI:</h1><p>Verifique la clave API/cuota/red. Detalle: %s</p>", html.EscapeString(msg))
}
