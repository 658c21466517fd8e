package constant

// Prompt templates used to enhance document analysis output with an LLM.
// The analysis JSON is injected via fmt.Sprintf, so each template carries
// exactly one %s verb.

const StructuredEnhancementPrompt = `Analyze the following structured data extracted from a document.
Validate fields, standardize formats, and infer missing values.
Return your analysis as a JSON object.

Extracted Data:
%s

JSON Response:
`

const UnstructuredEnhancementPrompt = `Analyze the following unstructured text. Extract key entities,
summarize the content, and identify the main topics.
Return your analysis as a JSON object.

Extracted Text:
%s

JSON Response:
`

const HybridEnhancementPrompt = `Perform a comprehensive analysis of the following document data,
which contains both structured and unstructured elements.
Cross-reference the data and provide a unified summary.
Return your analysis as a JSON object.

Document Data:
%s

JSON Response:
`

// EnhancementPromptFor picks the template for an extraction type.
// Unknown types fall back to the hybrid template.
func EnhancementPromptFor(extractionType string) string {
	switch extractionType {
	case "structured":
		return StructuredEnhancementPrompt
	case "unstructured":
		return UnstructuredEnhancementPrompt
	default:
		return HybridEnhancementPrompt
	}
}
