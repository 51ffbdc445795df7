package draft

// NewGenerator selects a generator by configuration. Defaults to the
// deterministic template generator unless openai mode is both requested and
// configured with a key.
func NewGenerator(mode, openAIKey, openAIModel string) Generator {
	if mode == "openai" && openAIKey != "" {
		return NewOpenAIGenerator(openAIKey, openAIModel)
	}
	return TemplateGenerator{}
}
