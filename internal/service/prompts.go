package service

import (
	"fmt"
	"strings"

	"github.com/mstolarz/vizquery/internal/domain"
)

// headRowsInPrompt is how many result rows the plotting prompt shows the
// model. Enough to infer column roles without blowing up the token count.
const headRowsInPrompt = 5

func buildSQLPrompt(schema, question string) string {
	var b strings.Builder
	b.WriteString("You are an expert data analyst. The PostgreSQL database you are working with has the following schema:\n\n")
	b.WriteString("```db-schema\n")
	b.WriteString(schema)
	b.WriteString("\n```\n\n")
	b.WriteString("Write a single SQL query that answers this question:\n")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide ONLY the sql query, in a ```sql code block, with no explanation.\n")
	return b.String()
}

func buildRetrySQLPrompt(schema, question, failedQuery string, execErr error) string {
	var b strings.Builder
	b.WriteString("You are an expert data analyst. The PostgreSQL database you are working with has the following schema:\n\n")
	b.WriteString("```db-schema\n")
	b.WriteString(schema)
	b.WriteString("\n```\n\n")
	b.WriteString("The question to answer is:\n")
	b.WriteString(question)
	b.WriteString("\n\nThis previous attempt failed:\n\n```sql\n")
	b.WriteString(failedQuery)
	b.WriteString("\n```\n\nwith the error:\n\n")
	b.WriteString(execErr.Error())
	b.WriteString("\n\nWrite a corrected SQL query. Please provide ONLY the sql query, in a ```sql code block, with no explanation.\n")
	return b.String()
}

func buildPlotPrompt(question string, ds *domain.Dataset) string {
	var b strings.Builder
	b.WriteString("A SQL query answering the question below returned a result set. Decide whether the result is worth charting and, if so, how.\n\n")
	b.WriteString("Question:\n")
	b.WriteString(question)
	b.WriteString("\n\nResult columns:\n\n```df-columns\n")
	b.WriteString(strings.Join(ds.Columns, "\n"))
	b.WriteString("\n```\n\nFirst rows:\n\n```df-head\n")
	b.WriteString(formatHead(ds))
	b.WriteString("\n```\n\n")
	b.WriteString("Answer with ONLY a ```json code block containing an object with these keys:\n")
	b.WriteString(`  "should_plot" (bool): false if the result is a single value or otherwise not chartable` + "\n")
	b.WriteString(`  "kind" (string): one of "bar", "line", "pie", "scatter"` + "\n")
	b.WriteString(`  "x" (string): column for the x axis` + "\n")
	b.WriteString(`  "y" (string or list of strings): column(s) to plot` + "\n")
	b.WriteString(`  "title" (string): chart title` + "\n")
	b.WriteString(`  "stacked", "subplots", "legend", "logy" (bool, optional)` + "\n")
	return b.String()
}

func buildQuestionsPrompt(schema string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d interesting analytical questions that can be answered with SQL against this database schema:\n\n", count)
	b.WriteString("```db-schema\n")
	b.WriteString(schema)
	b.WriteString("\n```\n\n")
	b.WriteString("Answer with one question per line and nothing else.\n")
	return b.String()
}

// formatHead renders the first rows as tab-separated lines.
func formatHead(ds *domain.Dataset) string {
	head := ds.Head(headRowsInPrompt)
	lines := make([]string, 0, len(head.Rows))
	for _, row := range head.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if cell == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = fmt.Sprintf("%v", cell)
			}
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}
