package legal

import (
	"strings"
	"text/template"
	"unicode/utf8"
)

// MaxDocumentChars is how much extracted document text is sent for analysis
const MaxDocumentChars = 4000

var queryTemplate = template.Must(template.New("query").Parse(`You are Vidhi Saarathi AI, an expert in Indian law. Analyze this legal query concisely but comprehensively:

"{{.}}"

Respond with structured HTML only, using exactly these sections:

<div class="legal-analysis">
<div class="domain-section">
<h3>🏛️ Legal Domain</h3>
<p><strong>Primary Domain:</strong> <span class="domain-badge">[Criminal Law/Civil Law/Family Law/Constitutional Law/Corporate Law/Property Law/Cyber Law]</span></p>
<p><strong>Sub-Category:</strong> [specific area within the domain]</p>
<p><strong>Brief Explanation:</strong> [2-3 sentences on the legal area]</p>
</div>
<div class="priority-section">
<h3>⚠️ Priority Assessment</h3>
<div class="priority-badge">[High/Medium/Low] Priority</div>
<p><strong>Score:</strong> [X]/10</p>
<p><strong>Reasoning:</strong> [1-2 sentences]</p>
</div>
<div class="explanation-section">
<h3>⚖️ Legal Analysis</h3>
<p>[The legal issues in plain language, citing the 2-3 most relevant sections of IPC/CPC/Constitution]</p>
</div>
<div class="actions-section">
<h3>📋 Recommended Actions</h3>
<ol>
<li><strong>Immediate:</strong> [what to do now]</li>
<li><strong>Documentation:</strong> [key documents needed]</li>
<li><strong>Legal Process:</strong> [next legal steps]</li>
<li><strong>Timeline:</strong> [important deadlines]</li>
</ol>
</div>
<div class="laws-section">
<h3>📖 Relevant Laws</h3>
<ul>
<li>[most applicable IPC sections]</li>
<li>[relevant CPC/Constitution articles]</li>
<li>[other applicable laws]</li>
</ul>
</div>
<div class="disclaimer-section">
<h3>⚠️ Important Notice</h3>
<p><em>This AI analysis is for general information only. Consult a qualified lawyer for advice on your specific situation.</em></p>
</div>
</div>

Keep the response comprehensive but concise.`))

var documentTemplate = template.Must(template.New("document").Parse(`You are Vidhi Saarathi AI, an expert in Indian law. A legal document (FIR, complaint or case record) was uploaded. Analyze it.

Document Content:
"{{.}}"

Respond with structured HTML only:

<div class="document-analysis">
<h3>📄 Document Type & Summary</h3>
<p><strong>Document Type:</strong> [FIR/Complaint/Legal Notice/Other]</p>
<p><strong>Key Parties:</strong> [complainant, accused, etc.]</p>
<p><strong>Summary:</strong> [2-3 sentences about the case]</p>
<h3>⚖️ Legal Analysis</h3>
<p><strong>Applicable Laws:</strong> [IPC, CrPC or other sections involved]</p>
<p><strong>Nature of Offense:</strong> [cognizable/non-cognizable, bailable/non-bailable where applicable]</p>
<p><strong>Legal Issues:</strong> [key legal points]</p>
<h3>📋 Recommended Actions</h3>
<ol>
<li><strong>Immediate Steps:</strong> [what to do now]</li>
<li><strong>Documentation:</strong> [additional documents needed]</li>
<li><strong>Legal Recourse:</strong> [available options]</li>
<li><strong>Timeline:</strong> [important deadlines, if any]</li>
</ol>
<h3>⚠️ Important Notice</h3>
<p><em>This AI analysis is informational. Consult a qualified lawyer for case-specific advice.</em></p>
</div>`))

// AnalysisPrompt wraps a user's legal question in the structured HTML prompt
func AnalysisPrompt(query string) string {
	return render(queryTemplate, query)
}

// DocumentPrompt builds the FIR analysis prompt from the first
// MaxDocumentChars characters of extracted text.
func DocumentPrompt(text string) string {
	return render(documentTemplate, Truncate(text, MaxDocumentChars))
}

func render(t *template.Template, data string) string {
	var sb strings.Builder
	// text/template only fails on write errors, which strings.Builder never returns
	_ = t.Execute(&sb, data)
	return sb.String()
}

// Truncate cuts s to at most n characters
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Preview returns the first n characters of s, with "..." appended when cut
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return Truncate(s, n) + "..."
}
