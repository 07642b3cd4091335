package core

import "strings"

// Guardrails screen user prompts before they reach the provider and
// model replies before they reach the user, following the municipal
// chatbot moderation rules.

// Keywords that mark a prompt as being about the municipality and its
// health services.
var allowedKeywords = []string{
	"prefeitura", "juiz de fora", "iptu", "upa", "ônibus", "transporte",
	"saúde", "educação", "escola", "matrícula", "cemitério", "iluminação",
	"água", "esgoto", "cesama", "defesa civil", "obras", "tapa-buraco",
	"serviços", "documentos", "horário", "atendimento", "endereço", "contato",
	"concurso", "imposto", "taxa", "multa", "trânsito",
	"samu", "vacina", "vacinação", "posto", "ubs", "hospital", "consulta",
	"remédio", "medicamento", "farmácia", "dengue", "emergência",
}

// Baseline screen for language a municipal channel cannot echo back.
// The provider safety settings remain the primary content filter;
// deployments extend this list with FORBIDDEN_WORDS.
var defaultForbiddenWords = []string{
	"merda",
	"porra",
	"caralho",
	"arrombado",
	"vai se foder",
}

// Common prompt-injection openers.
var injectionPhrases = []string{
	"ignore suas instruções anteriores",
	"esqueça tudo o que eu disse",
	"aja como",
	"responda como",
	"você é um",
	"seu novo objetivo é",
	"desconsidere as regras",
}

const (
	offTopicMessage    = "Desculpe, só posso responder a perguntas sobre a Prefeitura de Juiz de Fora e seus serviços."
	forbiddenMessage   = "Sua mensagem contém linguagem que não é permitida. Por favor, reformule sua pergunta."
	injectionMessage   = "Não posso processar este pedido. Por favor, faça uma pergunta direta sobre os serviços da prefeitura."
	badResponseMessage = "Não foi possível gerar uma resposta adequada. Por favor, tente novamente."
)

// GuardrailError rejects a prompt or reply with a citizen-facing
// Portuguese message.
type GuardrailError struct {
	Message string
}

func (e *GuardrailError) Error() string {
	return "guardrail rejected: " + e.Message
}

// Guardrails holds the moderation word lists for one deployment.
type Guardrails struct {
	forbiddenWords []string
}

// NewGuardrails builds the screens from the baseline list plus any
// deployment-specific words.
func NewGuardrails(extraForbiddenWords []string) *Guardrails {
	words := append([]string{}, defaultForbiddenWords...)
	for _, w := range extraForbiddenWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	return &Guardrails{forbiddenWords: words}
}

// ValidatePrompt runs all input screens on the user prompt.
func (g *Guardrails) ValidatePrompt(prompt string) error {
	lower := strings.ToLower(prompt)

	if containsAny(lower, injectionPhrases) {
		return &GuardrailError{Message: injectionMessage}
	}
	if containsAny(lower, g.forbiddenWords) {
		return &GuardrailError{Message: forbiddenMessage}
	}
	if !containsAny(lower, allowedKeywords) {
		return &GuardrailError{Message: offTopicMessage}
	}
	return nil
}

// ValidateResponse screens the model reply before it is shown.
func (g *Guardrails) ValidateResponse(response string) error {
	if containsAny(strings.ToLower(response), g.forbiddenWords) {
		return &GuardrailError{Message: badResponseMessage}
	}
	return nil
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
