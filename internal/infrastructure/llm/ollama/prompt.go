package ollama

import "fmt"

// Document texts are truncated before prompting; anything past this point is
// boilerplate on the statements and resumes seen in practice.
const maxDocumentSnippet = 4000

func buildExtractionPrompt(idText, bankText, resumeText string) string {
	return fmt.Sprintf(`You are an expert data extraction assistant.
Return a strict JSON object with keys:
name_from_id (string or null), income_from_statement (integer or null), experience_from_resume (string or null).
Use null for any field the documents do not support. No markdown, no extra keys.

Identity document text:
%s

Bank statement text:
%s

Resume text:
%s
`, snippet(idText), snippet(bankText), snippet(resumeText))
}

func snippet(text string) string {
	if len(text) > maxDocumentSnippet {
		return text[:maxDocumentSnippet]
	}
	return text
}
