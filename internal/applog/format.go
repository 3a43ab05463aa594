package applog

import (
	"fmt"
	"io"
	"strings"
)

// nullText is rendered in place of any nil or missing template argument.
const nullText = "NULL"

// nullArg renders as the null literal under every formatting verb.
type nullArg struct{}

func (nullArg) Format(f fmt.State, _ rune) { io.WriteString(f, nullText) }

// formatMessage formats template against args. Nil arguments and arguments
// missing for a template verb both render as the literal "NULL" rather than
// an empty string or a fmt error marker.
func formatMessage(template string, args ...any) string {
	if len(args) == 0 && !strings.ContainsRune(template, '%') {
		return template
	}

	padded := make([]any, len(args))
	for i, a := range args {
		if a == nil {
			padded[i] = nullArg{}
		} else {
			padded[i] = a
		}
	}
	if need := countVerbs(template); need > len(padded) {
		for len(padded) < need {
			padded = append(padded, nullArg{})
		}
	}

	return fmt.Sprintf(template, padded...)
}

// countVerbs counts the argument-consuming verbs in a printf template.
// Literal "%%" sequences consume nothing; a dynamic width or precision
// ("*") consumes an extra argument.
func countVerbs(template string) int {
	count := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		i++
		if i >= len(template) {
			break
		}
		if template[i] == '%' {
			continue
		}
		// Skip flags, width, precision and argument indexes until the verb.
		for i < len(template) {
			c := template[i]
			if c == '*' {
				count++
			}
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				break
			}
			i++
		}
		count++
	}
	return count
}
