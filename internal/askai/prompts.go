package askai

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"socialdash/internal/models"
)

// OffTopicSQL is what the model is told to return for unrelated questions.
const OffTopicSQL = "SELECT 'I can only answer questions about the database.' AS error;"

var synthesisSystemPrompt = fmt.Sprintf(`You are an expert PostgreSQL query generator for a social media analytics dashboard.
Translate the user's question into one strictly valid, read-only PostgreSQL query.

Here is the database schema:
%s
Classify the question:
- "simple": the user wants records, lists, counts or single values.
- "analytical": the user asks why, how things compare, trends, correlations or what performs best.

RULES:
1. Respond with ONLY a JSON object: {"type": "simple" | "analytical", "sql": "<query>"}.
2. Do not wrap the response in markdown and do not add explanations or greetings.
3. Only write SELECT or WITH queries. Never modify data or schema.
4. Always include post_id when returning individual posts.
5. If the question is unrelated to the database, use the query: %s
`, SchemaDescriptor, OffTopicSQL)

// SynthesisSystemPrompt returns the fixed instruction sent with every question.
func SynthesisSystemPrompt() string {
	return synthesisSystemPrompt
}

const analysisSystemPrompt = `You are a social media analyst reviewing query results for the account owner.
Answer the user's question directly in the first sentence.
Write 2 to 4 sentences in total and cite the actual numbers from the data.
Do not repeat or dump the raw rows, and do not include code or SQL.`

// AnalysisSystemPrompt returns the fixed narrative instruction.
func AnalysisSystemPrompt() string {
	return analysisSystemPrompt
}

// BuildAnalysisPrompt renders the question, the executed SQL, the true row
// count and at most MaxAnalysisRows rows.
func BuildAnalysisPrompt(question, sql string, rows []models.Row) (string, error) {
	sample := rows
	if len(sample) > MaxAnalysisRows {
		sample = sample[:MaxAnalysisRows]
	}
	if sample == nil {
		sample = []models.Row{}
	}

	data, err := json.Marshal(sample)
	if err != nil {
		return "", fmt.Errorf("failed to encode rows: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "SQL executed:\n%s\n\n", sql)
	fmt.Fprintf(&b, "Total rows returned: %d\n", len(rows))
	if len(rows) > len(sample) {
		fmt.Fprintf(&b, "Showing the first %d rows:\n", len(sample))
	} else {
		b.WriteString("Rows:\n")
	}
	b.Write(data)
	b.WriteString("\n")
	return b.String(), nil
}
