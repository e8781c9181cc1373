package llm

import (
	"fmt"
	"sort"
	"strings"
)

// SystemPromptSpanish defines the agent persona for reply generation.
const SystemPromptSpanish = `Eres un agente de ventas profesional de ATOM llamado AsistenteATOM. Tu objetivo es recopilar información relevante de prospectos (leads) interesados en los servicios y productos de tecnología que ofrece la empresa.

Directrices importantes:
1. Mantén un tono profesional pero amigable y conversacional.
2. Evita respuestas demasiado largas. Sé conciso y ve al punto.
3. Recoge información clave del prospecto: nombre, empresa, necesidades, presupuesto, plazos.
4. No inventes información sobre los productos o servicios de ATOM.
5. Si no tienes suficiente contexto, haz preguntas para obtener más información.
6. Cuando sea apropiado, finaliza la conversación ofreciendo enviar información adicional o agendar una reunión con un especialista.

Recuerda que tu objetivo principal es nutrir al lead, no hacer ventas directamente. Establece una relación y recopila información valiosa.`

// userPromptTemplate wraps the current turn with known fields and history.
const userPromptTemplate = `# Información recopilada del lead hasta ahora:
%s

# Historial de conversación:
%s

# Entrada actual del usuario:
%s

Responde de manera natural como un agente de ventas profesional. Recuerda que tu objetivo es recopilar información relevante y nutrir al lead.`

// ExtractionSystemPrompt primes the model for entity extraction.
const ExtractionSystemPrompt = `Eres un asistente especializado en extraer información relevante de leads.`

// extractionPromptTemplate asks for new lead attributes as a bare JSON object.
const extractionPromptTemplate = `Analiza el siguiente texto del usuario y extrae toda la información relevante sobre el lead.

Texto del usuario:
"%s"

Información existente del lead:
%s

Extrae cualquier información nueva o actualizada sobre:
- Nombre
- Empresa
- Email
- Teléfono
- Necesidades o problemas
- Presupuesto
- Productos/servicios de interés
- Plazos

Responde ÚNICAMENTE con un objeto JSON que contenga los campos encontrados. Si un campo no se encuentra en el texto, no lo incluyas en la respuesta.

Ejemplo de formato de respuesta:
{
  "nombre": "Juan Pérez",
  "empresa": "TechSolutions",
  "necesidades": "Automatización de procesos de venta"
}`

// Intents enumerates the recognized conversational intents. Detection is
// informational: it is logged and surfaced but never drives branching.
var Intents = map[string]string{
	"GREETING":     "Saludo inicial o presentación",
	"INQUIRY":      "Consulta sobre productos o servicios",
	"PRICING":      "Consulta sobre precios o presupuestos",
	"TIMELINE":     "Consulta sobre plazos o tiempos de entrega",
	"REQUIREMENTS": "Explicación de necesidades o requisitos",
	"CONTACT_INFO": "Proporcionando información de contacto",
	"COMPETITOR":   "Mencionando o comparando con competidores",
	"OBJECTION":    "Expresando una objeción o preocupación",
	"INTEREST":     "Mostrando interés por seguir adelante",
	"CLOSING":      "Finalizando la conversación",
	"IRRELEVANT":   "Tema no relacionado con el negocio",
}

// IntentIrrelevant is the fallback when detection fails or the model answers
// with an unknown label.
const IntentIrrelevant = "IRRELEVANT"

// intentSystemPrompt instructs the model to answer with a bare intent label.
func intentSystemPrompt() string {
	keys := make([]string, 0, len(Intents))
	for k := range Intents {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Eres un sistema de detección de intenciones para un asistente de ventas. Analiza el texto del usuario y determina cuál es la intención principal entre las siguientes opciones:\n\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, Intents[k])
	}
	b.WriteString("\nResponde únicamente con el identificador de la intención (por ejemplo, \"GREETING\").")
	return b.String()
}

// buildUserPrompt renders the generation prompt from turn context.
func buildUserPrompt(utterance string, history []Message, fields map[string]string) string {
	return fmt.Sprintf(userPromptTemplate, formatFields(fields), formatHistory(history), utterance)
}

// formatHistory renders the turn history the way the prompt expects it.
func formatHistory(history []Message) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		speaker := "Lead"
		if m.Sender == "agent" {
			speaker = "Agente"
		}
		lines = append(lines, speaker+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// formatFields renders known fields as a compact JSON-ish block, sorted for
// prompt stability.
func formatFields(fields map[string]string) string {
	if len(fields) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%q: %q", k, fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
