package summary

import (
	"fmt"
	"strings"

	"meeting-notifier/internal/models"

	"github.com/samber/lo"
)

// MinTranscriptLength is the trimmed transcript length below which the backend is not called.
const MinTranscriptLength = 20

// Transcript renders the chat as "[user]: text" lines in the order received.
func Transcript(history []models.ChatMessage) string {
	lines := lo.Map(history, func(m models.ChatMessage, _ int) string {
		return fmt.Sprintf("[%s]: %s", m.User, m.Text)
	})
	return strings.Join(lines, "\n")
}

// Prompt wraps a transcript in the summarization instructions.
func Prompt(transcript string) string {
	return fmt.Sprintf(promptTemplate, transcript)
}

const promptTemplate = `Eres un asistente de reuniones. Analiza la siguiente transcripción.

TRANSCRIPCIÓN:
---
%s
---

TAREA:
Genera un resumen completo y estructurado en formato HTML. El resumen debe incluir:
1. Un título de nivel 2 (<h2>) con un resumen general de la conversación.
2. Una sección de participantes activos (<h2>) y una lista no ordenada (<ul>) con los nombres de quienes enviaron mensajes.
3. Una sección de compromisos/tareas (<h2>) y una lista no ordenada (<ul>) con los puntos de acción y la persona asignada. Si no hay tareas, indica "No se identificaron tareas claras.".

Responde ÚNICAMENTE con el código HTML. NO incluyas bloques de Markdown como ` + "```html" + `.
`
