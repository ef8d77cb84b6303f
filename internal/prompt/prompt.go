// Package prompt constructs the prompts and system instructions sent to the
// model for the different drafting tasks.
package prompt

import (
	"fmt"
	"strings"
)

// System instructions for the auxiliary structured-output chats. The drafting
// chat's system instruction is operator-supplied and loaded from disk.
const (
	MappingSystemInstruction    = "You convert natural language inputs into structured placeholder-value pairs."
	SuggestionSystemInstruction = "You are a prompt suggestion expert for AI-generated tender documents."
	HelpSystemInstruction       = "You explain tender document fields in one short sentence."
)

// Greeting opens every fresh drafting session.
const Greeting = "Hello! I can help you draft a professional tender document. Tell me your requirement to get started."

// SectionTemplates is the fixed list of common tender sections offered by the
// template picker.
func SectionTemplates() []string {
	return []string{
		"Scope of Work",
		"Eligibility Criteria",
		"Evaluation Criteria",
		"Payment Terms",
		"Timeline and Deadlines",
		"Submission Guidelines",
		"Penalty Clauses",
		"Terms and Conditions",
	}
}

// Builder constructs standardized prompts for the drafting tasks.
type Builder struct{}

// BuildFieldMappingPrompt asks for a strict JSON object mapping the listed
// placeholders to values found in the user's message. Fields the user did not
// mention must simply be absent.
func (b *Builder) BuildFieldMappingPrompt(placeholders []string, userInput string) string {
	var sb strings.Builder
	sb.WriteString("You extract structured placeholder values from user messages.\n\n")
	sb.WriteString("Given this list of placeholders:\n")
	for _, p := range placeholders {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	sb.WriteString("\nAnd this user message:\n\"\"\"")
	sb.WriteString(userInput)
	sb.WriteString("\"\"\"\n\n")
	sb.WriteString("Return a JSON object mapping placeholder names to their values, like:\n")
	sb.WriteString("{\n  \"Deadline\": \"31 May 2025\",\n  \"Bid Amount\": \"50000 INR\"\n}\n\n")
	sb.WriteString("Omit placeholders the message does not mention. Only return JSON. No explanation.")
	return sb.String()
}

// BuildSuggestionPrompt asks for 3 to 5 short follow-up prompts given the
// latest exchange, as a strict JSON array of strings.
func (b *Builder) BuildSuggestionPrompt(userInput, aiResponse string) string {
	var sb strings.Builder
	sb.WriteString("You help users draft professional tender documents. ")
	sb.WriteString("Based on the user's latest input and the AI's response, suggest 3 to 5 logical follow-up prompts or sections the user might want to include next.\n\n")
	sb.WriteString("User Input:\n\"\"\"")
	sb.WriteString(userInput)
	sb.WriteString("\"\"\"\n\nAI Response:\n\"\"\"")
	sb.WriteString(aiResponse)
	sb.WriteString("\"\"\"\n\n")
	sb.WriteString("Return only a JSON array of strings, like:\n")
	sb.WriteString("[\"Add payment terms\", \"Include evaluation criteria\", \"Mention timeline and deadlines\"]")
	return sb.String()
}

// BuildTemplatePrompt turns a picked section name into a canned drafting
// request.
func (b *Builder) BuildTemplatePrompt(section string) string {
	return fmt.Sprintf("Write a professional and detailed section for: %s. Use placeholders like [Field Name] if data is missing.", section)
}

// BuildFieldHelpPrompt asks for a one-line explanation of a placeholder.
func (b *Builder) BuildFieldHelpPrompt(name string) string {
	return fmt.Sprintf("Explain in one short sentence what the tender field %q means and what value it expects. Return plain text only.", name)
}

// BuildEditSystemInstruction embeds text extracted from an uploaded document
// into the drafting system instruction so the session edits an existing
// tender instead of drafting from scratch.
func (b *Builder) BuildEditSystemInstruction(base, extracted string) string {
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\nThe user is editing an existing tender document. Its current text is:\n\"\"\"\n")
	sb.WriteString(extracted)
	sb.WriteString("\n\"\"\"\nApply requested changes against this text and keep untouched sections intact.")
	return sb.String()
}
