package models

// FaqEntry is one entry of the FAQ document loaded at startup. The JSON keys
// match the document store schema, which uses Spanish field names and has two
// spellings of the standard-answer key in the wild.
type FaqEntry struct {
	Category          string   `json:"categoria"`
	Questions         []string `json:"preguntas"`
	StandardAnswer    string   `json:"respuesta_estandar"`
	StandardAnswerAlt string   `json:"respuestaestandar"`
	DetailedSteps     []string `json:"pasos_detallados"`
	Keywords          []string `json:"keywords"`
}

// Answer returns the standard answer, tolerating both key spellings.
func (e FaqEntry) Answer() string {
	if e.StandardAnswer != "" {
		return e.StandardAnswer
	}
	return e.StandardAnswerAlt
}

// BotRuntime is the configuration snapshot populated once during startup and
// read-only afterwards. Degraded is set when loading was exhausted and the
// built-in defaults were installed instead.
type BotRuntime struct {
	PromptTemplate    string
	FaqEntries        []FaqEntry
	KnowledgeBaseText string
	Degraded          bool
}
